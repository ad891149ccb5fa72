// Package classify maps a file extension onto the asset category that decides where the
// generated accessors live, which handle type they return and where the runtime loads the
// asset from.
package classify

import (
	"fmt"
	"path"
	"strings"

	"github.com/spaghettifunk/contentbuild/content/naming"
)

// Type is the asset type code written to the manifest.
type Type uint32

const (
	TypeUnknown Type = 0x0
	TypeShader  Type = 0x1
	TypeTexture Type = 0x2
	TypeModel   Type = 0x3
)

func (t Type) String() string {
	switch t {
	case TypeUnknown:
		return "Unknown"
	case TypeShader:
		return "Shader"
	case TypeTexture:
		return "Texture"
	case TypeModel:
		return "Model"
	default:
		return fmt.Sprintf("Type(%d)", uint32(t))
	}
}

// ParseType accepts the names produced by Type.String, case-insensitively.
func ParseType(s string) (Type, error) {
	for _, t := range []Type{TypeUnknown, TypeShader, TypeTexture, TypeModel} {
		if strings.EqualFold(s, t.String()) {
			return t, nil
		}
	}
	return TypeUnknown, fmt.Errorf("unknown asset type %q", s)
}

// Lookup decides which path the runtime should read an asset from.
type Lookup int

const (
	// LookupSource loads the discovered file as is.
	LookupSource Lookup = iota
	// LookupCompiled loads the toolchain output under the shader build directory.
	LookupCompiled
)

func (l Lookup) String() string {
	if l == LookupCompiled {
		return "compiled"
	}
	return "source"
}

// Match selects how rule tokens are compared against an extension.
type Match string

const (
	// MatchContains classifies when the extension merely contains the token, so ".apng"
	// is a texture. This is what the content tree has always been built with.
	MatchContains Match = "contains"
	// MatchExact requires the last dot-component of the extension to equal the token.
	MatchExact Match = "exact"
)

// Rule is one row of the classification table.
type Rule struct {
	Tokens    []string
	Namespace string
	Type      Type
	Wrapper   string
	Lookup    Lookup
}

// Namespaces and wrapper names emitted by the default table.
const (
	NamespaceImages          = "Images"
	NamespaceModels          = "Models"
	NamespaceVertexShaders   = "VertexShaders"
	NamespaceFragmentShaders = "FragmentShaders"
	NamespaceUnknown         = "UnknownContent"

	WrapperAsset   = "Asset"
	WrapperTexture = "Texture"
	WrapperModel   = "Model"
	WrapperShader  = "Shader"
)

// DefaultRules is the built-in table. Order matters: the first matching rule wins.
var DefaultRules = []Rule{
	{Tokens: []string{"png"}, Namespace: NamespaceImages, Type: TypeTexture, Wrapper: WrapperTexture, Lookup: LookupSource},
	{Tokens: []string{"fbx", "obj"}, Namespace: NamespaceModels, Type: TypeModel, Wrapper: WrapperModel, Lookup: LookupSource},
	{Tokens: []string{"vert"}, Namespace: NamespaceVertexShaders, Type: TypeShader, Wrapper: WrapperShader, Lookup: LookupCompiled},
	{Tokens: []string{"frag"}, Namespace: NamespaceFragmentShaders, Type: TypeShader, Wrapper: WrapperShader, Lookup: LookupCompiled},
}

// Fallback is used when no rule matches.
var Fallback = Rule{Namespace: NamespaceUnknown, Type: TypeUnknown, Wrapper: WrapperAsset, Lookup: LookupSource}

// Classification is the outcome of classifying one file.
type Classification struct {
	Namespace string
	Type      Type
	Wrapper   string
	Lookup    Lookup
	// Matched is false when the fallback rule was used.
	Matched bool
}

// Classifier evaluates the rule table.
type Classifier struct {
	rules     []Rule
	match     Match
	shaderOut string
	suffix    string
}

// Options configures a Classifier. Zero values fall back to the defaults.
type Options struct {
	Match Match
	// ExtraRules are evaluated after DefaultRules.
	ExtraRules []Rule
	// ShaderOutputDir is where compiled shaders are written.
	ShaderOutputDir string
	// CompiledSuffix is appended to a shader's file name, e.g. ".spv".
	CompiledSuffix string
}

const (
	DefaultShaderOutputDir = "Build/Content/Shaders"
	DefaultCompiledSuffix  = ".spv"
)

func New(opts Options) (*Classifier, error) {
	c := &Classifier{
		match:     opts.Match,
		shaderOut: strings.TrimSuffix(naming.Normalize(opts.ShaderOutputDir), "/"),
		suffix:    opts.CompiledSuffix,
	}
	if c.match == "" {
		c.match = MatchContains
	}
	if c.match != MatchContains && c.match != MatchExact {
		return nil, fmt.Errorf("unknown match mode %q", c.match)
	}
	if c.shaderOut == "" {
		c.shaderOut = DefaultShaderOutputDir
	}
	if c.suffix == "" {
		c.suffix = DefaultCompiledSuffix
	}

	c.rules = append(c.rules, DefaultRules...)
	for i, r := range opts.ExtraRules {
		if len(r.Tokens) == 0 || r.Namespace == "" {
			return nil, fmt.Errorf("rule %d: tokens and namespace are required", i)
		}
		// compiled output is the only thing the runtime can load for a shader, and the
		// toolchain only runs for shaders
		if (r.Type == TypeShader) != (r.Lookup == LookupCompiled) {
			return nil, fmt.Errorf("rule %d: %s assets cannot use %s lookup", i, r.Type, r.Lookup)
		}
		if r.Wrapper == "" {
			r.Wrapper = WrapperAsset
		}
		c.rules = append(c.rules, r)
	}
	return c, nil
}

// Classify picks the first rule whose token matches the extension.
func (c *Classifier) Classify(ext string) Classification {
	for _, r := range c.rules {
		for _, tok := range r.Tokens {
			if c.matches(ext, tok) {
				return Classification{Namespace: r.Namespace, Type: r.Type, Wrapper: r.Wrapper, Lookup: r.Lookup, Matched: true}
			}
		}
	}
	return Classification{Namespace: Fallback.Namespace, Type: Fallback.Type, Wrapper: Fallback.Wrapper, Lookup: Fallback.Lookup}
}

func (c *Classifier) matches(ext, token string) bool {
	if c.match == MatchExact {
		last := ext
		if dot := strings.LastIndex(ext, "."); dot >= 0 {
			last = ext[dot+1:]
		}
		return last == token
	}
	return strings.Contains(ext, token)
}

// LookupPath returns where the runtime loads the asset from. Compiled assets live in the
// shader output directory under their original file name plus the compiled suffix.
func (c *Classifier) LookupPath(cl Classification, name naming.Name) string {
	if cl.Lookup == LookupCompiled {
		return path.Join(c.shaderOut, name.FileName+c.suffix)
	}
	return name.Normalized
}

// ShaderOutputDir is the directory compiled shaders are written to.
func (c *Classifier) ShaderOutputDir() string {
	return c.shaderOut
}

// CompiledSuffix is the extension appended to compiled shaders.
func (c *Classifier) CompiledSuffix() string {
	return c.suffix
}
