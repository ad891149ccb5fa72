// Package config loads contentbuild.toml on top of built-in defaults and resolves the
// shader toolchain location from the environment.
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"

	"github.com/spaghettifunk/contentbuild/content/classify"
	"github.com/spaghettifunk/contentbuild/content/codegen"
	"github.com/spaghettifunk/contentbuild/content/manifest"
	"github.com/spaghettifunk/contentbuild/content/naming"
	"github.com/spaghettifunk/contentbuild/engine/core"
)

// DefaultFile is read from the working directory when --config is not given.
const DefaultFile = "contentbuild.toml"

type Config struct {
	Paths    Paths    `toml:"paths"`
	Resolver Resolver `toml:"resolver"`
	Classify Classify `toml:"classify"`
	Shaders  Shaders  `toml:"shaders"`
	Codegen  Codegen  `toml:"codegen"`
	Pipeline Pipeline `toml:"pipeline"`
	Log      Log      `toml:"log"`
}

type Paths struct {
	// ContentRoots are walked recursively for content files.
	ContentRoots []string `toml:"content_roots"`
	// BuildRoot is wiped at the start of every run.
	BuildRoot    string `toml:"build_root"`
	ShaderOutput string `toml:"shader_output"`
	Declarations string `toml:"declarations"`
	Definitions  string `toml:"definitions"`
	Manifest     string `toml:"manifest"`
}

type Resolver struct {
	RootTokens []string `toml:"root_tokens"`
}

type Classify struct {
	// Match is "contains" or "exact".
	Match string `toml:"match"`
	Rules []Rule `toml:"rules"`
}

// Rule adds a row to the classification table. Rules of type "shader" are compiled and
// looked up in paths.shader_output.
type Rule struct {
	Tokens    []string `toml:"tokens"`
	Namespace string   `toml:"namespace"`
	Type      string   `toml:"type"`
	Wrapper   string   `toml:"wrapper"`
}

type Shaders struct {
	// ToolchainEnv names the variable holding the toolchain's bin directory.
	ToolchainEnv string   `toml:"toolchain_env"`
	Executable   string   `toml:"executable"`
	Suffix       string   `toml:"suffix"`
	Timeout      Duration `toml:"timeout"`
	Jobs         int      `toml:"jobs"`
	Skip         bool     `toml:"skip"`
}

type Codegen struct {
	Package      string `toml:"package"`
	AssetsImport string `toml:"assets_import"`
}

type Pipeline struct {
	// SortPaths orders discovered files lexically before IDs are assigned.
	SortPaths bool     `toml:"sort_paths"`
	Debounce  Duration `toml:"watch_debounce"`
	EnvFiles  []string `toml:"env_files"`
}

type Log struct {
	Level string `toml:"level"`
}

// Duration reads values such as "30s" from TOML.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

func Default() *Config {
	return &Config{
		Paths: Paths{
			ContentRoots: []string{"Content", "LearnToads.Game/Shaders"},
			BuildRoot:    "Build/Content",
			ShaderOutput: classify.DefaultShaderOutputDir,
			Declarations: "LearnToads.Game/Content/content_gen.go",
			Definitions:  "LearnToads.Game/Content/content_accessors_gen.go",
			Manifest:     manifest.DefaultPath,
		},
		Resolver: Resolver{RootTokens: append([]string(nil), naming.DefaultRootTokens...)},
		Classify: Classify{Match: string(classify.MatchContains)},
		Shaders: Shaders{
			ToolchainEnv: "VulkanBinPath",
			Executable:   "glslc",
			Suffix:       classify.DefaultCompiledSuffix,
			Timeout:      Duration{time.Minute},
			Jobs:         1,
		},
		Codegen: Codegen{
			Package:      codegen.DefaultPackage,
			AssetsImport: codegen.DefaultAssetsImport,
		},
		Pipeline: Pipeline{
			SortPaths: true,
			Debounce:  Duration{250 * time.Millisecond},
			EnvFiles:  []string{".env"},
		},
		Log: Log{Level: "info"},
	}
}

// Load reads path over the defaults. A missing file is only an error when required is
// set, i.e. when the user named the file explicitly.
func Load(path string, required bool) (*Config, error) {
	if path == "" {
		path = DefaultFile
	}
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) && !required {
			core.LogDebug("no %s found, using defaults", path)
			return Default(), nil
		}
		return nil, fmt.Errorf("%w: %v", core.ErrInvalidConfig, err)
	}
	defer f.Close()

	cfg, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Decode parses TOML over the defaults. Unknown keys are rejected.
func Decode(r io.Reader) (*Config, error) {
	cfg := Default()
	dec := toml.NewDecoder(r).DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return nil, fmt.Errorf("%w: %s", core.ErrInvalidConfig, strict.String())
		}
		return nil, fmt.Errorf("%w: %v", core.ErrInvalidConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the fields every run depends on.
func (c *Config) Validate() error {
	var problems []string
	if len(c.Paths.ContentRoots) == 0 {
		problems = append(problems, "paths.content_roots is empty")
	}
	for name, v := range map[string]string{
		"paths.build_root":    c.Paths.BuildRoot,
		"paths.shader_output": c.Paths.ShaderOutput,
		"paths.declarations":  c.Paths.Declarations,
		"paths.definitions":   c.Paths.Definitions,
		"paths.manifest":      c.Paths.Manifest,
	} {
		if strings.TrimSpace(v) == "" {
			problems = append(problems, name+" is empty")
		}
	}
	if c.Paths.ShaderOutput != "" && c.Paths.BuildRoot != "" && !within(c.Paths.ShaderOutput, c.Paths.BuildRoot) {
		problems = append(problems, "paths.shader_output must be inside paths.build_root")
	}
	for _, root := range c.Paths.ContentRoots {
		if c.Paths.BuildRoot != "" && within(root, c.Paths.BuildRoot) {
			problems = append(problems, fmt.Sprintf("content root %s is inside paths.build_root, which is wiped on every run", root))
		}
	}
	if c.Shaders.Jobs < 0 {
		problems = append(problems, "shaders.jobs is negative")
	}
	if _, err := c.ClassifierOptions(); err != nil {
		problems = append(problems, err.Error())
	}
	if len(problems) > 0 {
		// map iteration above is unordered
		slices.Sort(problems)
		return fmt.Errorf("%w: %s", core.ErrInvalidConfig, strings.Join(problems, "; "))
	}
	return nil
}

// within reports whether p is dir or below it.
func within(p, dir string) bool {
	absP, err := filepath.Abs(filepath.FromSlash(naming.Normalize(p)))
	if err != nil {
		return false
	}
	absDir, err := filepath.Abs(filepath.FromSlash(naming.Normalize(dir)))
	if err != nil {
		return false
	}
	rel, err := filepath.Rel(absDir, absP)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}

// ClassifierOptions translates the classify and paths sections.
func (c *Config) ClassifierOptions() (classify.Options, error) {
	opts := classify.Options{
		Match:           classify.Match(c.Classify.Match),
		ShaderOutputDir: c.Paths.ShaderOutput,
		CompiledSuffix:  c.Shaders.Suffix,
	}
	if opts.Match != "" && opts.Match != classify.MatchContains && opts.Match != classify.MatchExact {
		return opts, fmt.Errorf("classify.match must be %q or %q", classify.MatchContains, classify.MatchExact)
	}
	for i, r := range c.Classify.Rules {
		typ := classify.TypeUnknown
		if r.Type != "" {
			t, err := classify.ParseType(r.Type)
			if err != nil {
				return opts, fmt.Errorf("classify.rules[%d]: %v", i, err)
			}
			typ = t
		}
		lookup := classify.LookupSource
		if typ == classify.TypeShader {
			lookup = classify.LookupCompiled
		}
		if r.Wrapper != "" && !codegen.KnownWrappers[r.Wrapper] {
			return opts, fmt.Errorf("classify.rules[%d]: unknown wrapper %q", i, r.Wrapper)
		}
		opts.ExtraRules = append(opts.ExtraRules, classify.Rule{
			Tokens:    r.Tokens,
			Namespace: r.Namespace,
			Type:      typ,
			Wrapper:   r.Wrapper,
			Lookup:    lookup,
		})
	}
	return opts, nil
}

// LoadEnv reads the configured .env files. Variables already set in the process win, and
// files that do not exist are skipped.
func (c *Config) LoadEnv() {
	for _, file := range c.Pipeline.EnvFiles {
		if _, err := os.Stat(file); err != nil {
			continue
		}
		if err := godotenv.Load(file); err != nil {
			core.LogWarn("could not read %s: %v", file, err)
		}
	}
}

// ToolchainDir returns the shader toolchain's bin directory from the environment.
func (c *Config) ToolchainDir() (string, error) {
	dir := strings.TrimSpace(os.Getenv(c.Shaders.ToolchainEnv))
	if dir == "" {
		return "", fmt.Errorf("%w: %s", core.ErrMissingEnvironment, c.Shaders.ToolchainEnv)
	}
	return dir, nil
}
