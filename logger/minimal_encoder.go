package logger

import (
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/buffer"
	"go.uber.org/zap/zapcore"
)

const (
	colorReset = "\x1b[0m"
	colorBold  = "\x1b[1m"
)

type palette struct {
	fg       string
	time     string
	accent   string
	alt      string
	id       string
	number   string
	yellow   string
	red      string
	redBg    string
	yellowBg string
}

var palettes = map[string]palette{
	"everforest": {
		fg:       "\x1b[38;5;223m",
		time:     "\x1b[38;5;107m",
		accent:   "\x1b[38;5;108m",
		alt:      "\x1b[38;5;208m",
		id:       "\x1b[38;5;109m",
		number:   "\x1b[38;5;108m",
		yellow:   "\x1b[38;5;179m",
		red:      "\x1b[38;5;167m",
		redBg:    "\x1b[48;5;52m",
		yellowBg: "\x1b[48;5;58m",
	},
	"gruvbox": {
		fg:       "\x1b[38;5;223m",
		time:     "\x1b[38;5;108m",
		accent:   "\x1b[38;5;142m",
		alt:      "\x1b[38;5;214m",
		id:       "\x1b[38;5;109m",
		number:   "\x1b[38;5;175m",
		yellow:   "\x1b[38;5;214m",
		red:      "\x1b[38;5;167m",
		redBg:    "\x1b[48;5;88m",
		yellowBg: "\x1b[48;5;58m",
	},
}

var currentTheme = "everforest"

// SetTheme configures the color scheme for console log output.
// Unknown names are ignored.
func SetTheme(theme string) {
	if _, ok := palettes[theme]; ok {
		currentTheme = theme
	}
}

func colors() palette {
	return palettes[currentTheme]
}

// Template fragments in messages: [noun:nom:masc:sg] and (article noun)@{...}
var templatePattern = regexp.MustCompile(`\[[^\]]+\]|\([^)]*\)@(\{[^}]*\}|\$\d+)`)

// colorizeMessage highlights template fragments inside a log message.
func colorizeMessage(msg string) string {
	c := colors()
	var result strings.Builder
	last := 0

	for _, m := range templatePattern.FindAllStringIndex(msg, -1) {
		if m[0] > last {
			result.WriteString(c.fg + msg[last:m[0]] + colorReset)
		}
		result.WriteString(c.alt + msg[m[0]:m[1]] + colorReset)
		last = m[1]
	}
	if last < len(msg) {
		result.WriteString(c.fg + msg[last:] + colorReset)
	}
	return result.String()
}

func colorComponent(name string) string {
	hash := 0
	for _, r := range name {
		hash += int(r)
	}
	if hash%2 == 0 {
		return colors().accent
	}
	return colors().alt
}

// minimalEncoder implements a compact console encoder.
// Format: "13:04:35  s.http  generated  (article noun)@{nom:masc:sg}  3 words 2ms"
type minimalEncoder struct {
	zapcore.Encoder
}

func newMinimalEncoder() *minimalEncoder {
	return &minimalEncoder{
		Encoder: zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
	}
}

func (enc *minimalEncoder) Clone() zapcore.Encoder {
	return &minimalEncoder{Encoder: enc.Encoder.Clone()}
}

func (enc *minimalEncoder) EncodeEntry(ent zapcore.Entry, fields []zapcore.Field) (*buffer.Buffer, error) {
	final := buffer.NewPool().Get()
	c := colors()

	final.AppendString(c.time)
	final.AppendString(ent.Time.Format("15:04:05"))
	final.AppendString(colorReset)

	if label := levelColorString(ent.Level); label != "" {
		final.AppendString("  ")
		final.AppendString(label)
	}

	if ent.LoggerName != "" {
		final.AppendString("  ")
		final.AppendString(colorComponent(ent.LoggerName))
		final.AppendString(abbreviateName(ent.LoggerName))
		final.AppendString(colorReset)
	}

	final.AppendString("  ")
	final.AppendString(colorizeMessage(ent.Message))

	if values := extractFieldValues(fields); values != "" {
		final.AppendString("  ")
		final.AppendString(values)
	}

	final.AppendString("\n")
	return final, nil
}

// levelColorString returns a bold label for anything other than INFO
func levelColorString(level zapcore.Level) string {
	c := colors()
	switch level {
	case zapcore.InfoLevel:
		return ""
	case zapcore.DebugLevel:
		return c.id + "DEBUG" + colorReset
	case zapcore.WarnLevel:
		return colorBold + c.yellowBg + c.yellow + "WARN" + colorReset
	default:
		return colorBold + c.redBg + c.red + level.CapitalString() + colorReset
	}
}

// abbreviateName shortens component names: server.http -> s.http
func abbreviateName(name string) string {
	parts := strings.Split(name, ".")
	if len(parts) > 1 && parts[0] != "" {
		return string(parts[0][0]) + "." + strings.Join(parts[1:], ".")
	}
	return name
}

func getFieldValue(field zapcore.Field) string {
	switch field.Type {
	case zapcore.StringType:
		return field.String
	case zapcore.Int64Type, zapcore.Int32Type, zapcore.Int16Type, zapcore.Int8Type,
		zapcore.Uint64Type, zapcore.Uint32Type, zapcore.Uint16Type, zapcore.Uint8Type:
		return fmt.Sprintf("%d", field.Integer)
	}
	if field.Interface != nil {
		return fmt.Sprintf("%v", field.Interface)
	}
	return ""
}

// extractFieldValues renders the fields worth seeing on a console line.
// Everything else is still available through JSON output.
func extractFieldValues(fields []zapcore.Field) string {
	c := colors()
	var values []string

	for _, field := range fields {
		val := getFieldValue(field)
		if val == "" {
			continue
		}
		switch field.Key {
		case FieldTemplate:
			values = append(values, c.alt+val+colorReset)
		case FieldRequestID, FieldClientID, FieldTemplateID:
			values = append(values, c.id+val+colorReset)
		case FieldLexical, FieldLemma, FieldCategory, FieldFile, FieldAddress:
			values = append(values, c.accent+val+colorReset)
		case FieldCount:
			values = append(values, c.number+val+colorReset+" words")
		case FieldDurationMS:
			values = append(values, c.number+val+colorReset+"ms")
		case FieldError:
			values = append(values, c.red+val+colorReset)
		}
	}

	return strings.Join(values, " ")
}
