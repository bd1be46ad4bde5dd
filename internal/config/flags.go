package config

import "flag"

// kvFlag collects repeated -s key=value occurrences in order.
type kvFlag []string

func (f *kvFlag) String() string {
	if f == nil {
		return ""
	}
	return "[" + joinComma(*f) + "]"
}

func (f *kvFlag) Set(value string) error {
	*f = append(*f, value)
	return nil
}

func joinComma(vs []string) string {
	out := ""
	for i, v := range vs {
		if i > 0 {
			out += ","
		}
		out += v
	}
	return out
}

var (
	flagConfig  = flag.String("config", "", "path to a YAML config file")
	flagOptions kvFlag
)

func init() {
	flag.Var(&flagOptions, "s", "set a config option as key=value; may be repeated")
}

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// ConfigPath returns the explicit config path if provided via -config.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags applies -s key=value overrides to cfg, in the order given.
// It returns the first error ApplyOptionString reports (ErrUnsupportedOption
// or a malformed value), if any; range checks happen later, in Validate.
func applyFlags(cfg *Config) error {
	for _, kv := range flagOptions {
		if err := ApplyOptionString(cfg, kv); err != nil {
			return err
		}
	}
	return nil
}
