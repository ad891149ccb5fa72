// Package codegen renders a registry into Go source: a declarations file with one type
// per namespace and a definitions file with the accessors of every descriptor. Output is a
// pure function of the registry, so an unchanged content tree yields byte-identical files.
package codegen

import (
	"bytes"
	"embed"
	"fmt"
	"go/format"
	"strings"
	"text/template"
	"unicode"
	"unicode/utf8"

	"github.com/spaghettifunk/contentbuild/content/naming"
	"github.com/spaghettifunk/contentbuild/content/registry"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.tmpl"))

const (
	DefaultPackage      = "content"
	DefaultAssetsImport = "github.com/spaghettifunk/contentbuild/engine/assets"
)

// KnownWrappers are the handle types exported by the assets package.
var KnownWrappers = map[string]bool{
	"Asset":   true,
	"Texture": true,
	"Model":   true,
	"Shader":  true,
}

type Options struct {
	// Package is the package clause of the generated files.
	Package string
	// AssetsImport is the import path of the runtime assets package.
	AssetsImport string
}

// Rename records an accessor whose class name was already taken in its namespace.
type Rename struct {
	ID        uint32
	Namespace string
	From      string
	To        string
}

func (r Rename) String() string {
	return fmt.Sprintf("%s.%s renamed to %s for asset id %d", r.Namespace, r.From, r.To, r.ID)
}

type Output struct {
	Declarations []byte
	Definitions  []byte
	Renames      []Rename
}

type fileData struct {
	Package      string
	AssetsImport string
	Namespaces   []namespaceData
	HasAccessors bool
}

type namespaceData struct {
	Name      string
	Type      string
	Accessors []accessorData
}

type accessorData struct {
	Name    string
	ID      uint32
	Wrapper string
	Source  string
}

// Generate renders both files. Namespaces are emitted in registry order and accessors in
// descriptor order.
func Generate(reg *registry.Registry, opts Options) (*Output, error) {
	if opts.Package == "" {
		opts.Package = DefaultPackage
	}
	if opts.AssetsImport == "" {
		opts.AssetsImport = DefaultAssetsImport
	}

	data, renames, err := buildModel(reg, opts)
	if err != nil {
		return nil, err
	}

	decls, err := render("declarations.go.tmpl", data)
	if err != nil {
		return nil, err
	}
	defs, err := render("definitions.go.tmpl", data)
	if err != nil {
		return nil, err
	}
	return &Output{Declarations: decls, Definitions: defs, Renames: renames}, nil
}

func buildModel(reg *registry.Registry, opts Options) (*fileData, []Rename, error) {
	data := &fileData{Package: opts.Package, AssetsImport: opts.AssetsImport}
	var renames []Rename

	topLevel := map[string]string{"Content": "aggregate type", "New": "constructor"}
	claim := func(name, owner string) error {
		if prev, taken := topLevel[name]; taken {
			return fmt.Errorf("generated name %s of %s collides with %s", name, owner, prev)
		}
		topLevel[name] = owner
		return nil
	}

	for _, ns := range reg.Namespaces() {
		nd := namespaceData{Name: ns.Name, Type: exported(ns.Name)}
		if err := claim(nd.Type, "namespace "+ns.Name); err != nil {
			return nil, nil, err
		}
		if err := claim(nd.Type+"Accessors", "namespace "+ns.Name); err != nil {
			return nil, nil, err
		}

		methods := map[string]bool{}
		for _, d := range ns.Descriptors {
			if !KnownWrappers[d.Wrapper] {
				return nil, nil, fmt.Errorf("asset %d (%s): unknown wrapper type %q", d.ID, d.SourcePath, d.Wrapper)
			}
			base := exported(d.ClassName)
			name := accessorName(base, d, methods)
			if name != base {
				renames = append(renames, Rename{ID: d.ID, Namespace: ns.Name, From: base, To: name})
			}
			methods[name] = true
			methods[name+"ID"] = true
			methods[name+"NoLoad"] = true

			nd.Accessors = append(nd.Accessors, accessorData{
				Name:    name,
				ID:      d.ID,
				Wrapper: d.Wrapper,
				Source:  naming.Normalize(d.SourcePath),
			})
			data.HasAccessors = true
		}
		data.Namespaces = append(data.Namespaces, nd)
	}
	return data, renames, nil
}

// exported makes s a valid exported Go identifier.
func exported(s string) string {
	id := naming.UpperFirst(naming.Identifier(s))
	if r, _ := utf8.DecodeRuneInString(id); !unicode.IsUpper(r) {
		return "X" + id
	}
	return id
}

// accessorName keeps base when its three methods are free, then tries the namespace
// segments as a prefix, then the asset id as a suffix.
func accessorName(base string, d *registry.Descriptor, taken map[string]bool) string {
	free := func(n string) bool {
		return !taken[n] && !taken[n+"ID"] && !taken[n+"NoLoad"]
	}
	if free(base) {
		return base
	}
	if prefix := naming.PascalJoin(d.Segments); prefix != "" && free(prefix+base) {
		return prefix + base
	}
	name := fmt.Sprintf("%s_%d", base, d.ID)
	for !free(name) {
		name += "_"
	}
	return name
}

func render(name string, data *fileData) ([]byte, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return nil, fmt.Errorf("render %s: %w", name, err)
	}
	src, err := format.Source(buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("format %s: %w", strings.TrimSuffix(name, ".tmpl"), err)
	}
	return src, nil
}
