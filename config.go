package cc

import "fmt"

// Config is a typed map of compiler settings (§6 "Configuration
// knobs"), grounded on the teacher's own config.go: a string-keyed map
// of tagged values with per-type Set/Get accessors instead of a
// reflection-based struct.
type Config map[string]*cfgVal

// NewConfig creates a configuration primed with the defaults every
// compilation needs.
func NewConfig() *Config {
	m := make(Config)
	m.SetStringSlice("search-path", nil)
	m.SetMacros("predefined-macros", nil)
	m.SetInt("max-errors", 0)
	m.SetBool("debug-lex", false)
	m.SetBool("debug-ast", false)
	m.SetBool("debug-hir", false)
	return &m
}

type cfgValType int

const (
	cfgValTypeUndefined cfgValType = iota
	cfgValTypeBool
	cfgValTypeInt
	cfgValTypeString
	cfgValTypeStringSlice
	cfgValTypeMacros
)

func (vt cfgValType) String() string {
	return map[cfgValType]string{
		cfgValTypeUndefined:   "undefined",
		cfgValTypeBool:        "bool",
		cfgValTypeInt:         "int",
		cfgValTypeString:      "string",
		cfgValTypeStringSlice: "[]string",
		cfgValTypeMacros:      "map[string][]Token",
	}[vt]
}

type cfgVal struct {
	typ         cfgValType
	asBool      bool
	asInt       int
	asString    string
	asStrings   []string
	asMacros    map[string][]Token
}

func (v *cfgVal) assignType(vt cfgValType) {
	if v.typ != vt && v.typ != cfgValTypeUndefined {
		panic(fmt.Sprintf("cannot assign `%s` to type `%s`", vt, v.typ))
	}
	v.typ = vt
}

func (v *cfgVal) checkType(vt cfgValType) {
	if v.typ != vt {
		panic(fmt.Sprintf("cannot retrieve `%s` from `%s` setting", vt, v.typ))
	}
}

func (c *Config) SetBool(path string, v bool) {
	(*c)[path] = &cfgVal{}
	(*c)[path].assignType(cfgValTypeBool)
	(*c)[path].asBool = v
}

func (c *Config) SetInt(path string, v int) {
	(*c)[path] = &cfgVal{}
	(*c)[path].assignType(cfgValTypeInt)
	(*c)[path].asInt = v
}

func (c *Config) SetString(path string, v string) {
	(*c)[path] = &cfgVal{}
	(*c)[path].assignType(cfgValTypeString)
	(*c)[path].asString = v
}

func (c *Config) SetStringSlice(path string, v []string) {
	(*c)[path] = &cfgVal{}
	(*c)[path].assignType(cfgValTypeStringSlice)
	(*c)[path].asStrings = v
}

func (c *Config) SetMacros(path string, v map[string][]Token) {
	(*c)[path] = &cfgVal{}
	(*c)[path].assignType(cfgValTypeMacros)
	(*c)[path].asMacros = v
}

func (c *Config) GetBool(path string) bool {
	if val, ok := (*c)[path]; ok {
		val.checkType(cfgValTypeBool)
		return val.asBool
	}
	panic(fmt.Sprintf("bool setting `%s` does not exist", path))
}

func (c *Config) GetInt(path string) int {
	if val, ok := (*c)[path]; ok {
		val.checkType(cfgValTypeInt)
		return val.asInt
	}
	panic(fmt.Sprintf("int setting `%s` does not exist", path))
}

func (c *Config) GetString(path string) string {
	if val, ok := (*c)[path]; ok {
		val.checkType(cfgValTypeString)
		return val.asString
	}
	panic(fmt.Sprintf("string setting `%s` does not exist", path))
}

func (c *Config) GetStringSlice(path string) []string {
	if val, ok := (*c)[path]; ok {
		val.checkType(cfgValTypeStringSlice)
		return val.asStrings
	}
	panic(fmt.Sprintf("[]string setting `%s` does not exist", path))
}

func (c *Config) GetMacros(path string) map[string][]Token {
	if val, ok := (*c)[path]; ok {
		val.checkType(cfgValTypeMacros)
		return val.asMacros
	}
	panic(fmt.Sprintf("macro-map setting `%s` does not exist", path))
}

// SearchPath, MaxErrors, DebugLex, DebugAST, DebugHIR are narrow,
// typed convenience wrappers over the well-known keys so call sites
// don't spell out string paths.
func (c *Config) SearchPath() []string              { return c.GetStringSlice("search-path") }
func (c *Config) PredefinedMacros() map[string][]Token { return c.GetMacros("predefined-macros") }
func (c *Config) MaxErrors() int                     { return c.GetInt("max-errors") }
func (c *Config) DebugLex() bool                     { return c.GetBool("debug-lex") }
func (c *Config) DebugAST() bool                     { return c.GetBool("debug-ast") }
func (c *Config) DebugHIR() bool                     { return c.GetBool("debug-hir") }
