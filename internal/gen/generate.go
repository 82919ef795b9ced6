package gen

import (
	"fmt"
	"os"
	"path"
	"path/filepath"

	"github.com/dave/jennifer/jen"
	"github.com/rs/zerolog"

	"github.com/koskimas/sdkgen/internal/config"
	"github.com/koskimas/sdkgen/internal/names"
	"github.com/koskimas/sdkgen/internal/schema"
)

const generatedHeader = "Code generated by sdkgen. DO NOT EDIT."

// GenerateCode emits one Go source file per composite type, grouped into one
// package per namespace under the configured output directory. A single Namer
// is shared by the whole run so that name transforms stay consistent across
// namespaces.
func GenerateCode(cfg config.Config, workingDir string, api *schema.API, log zerolog.Logger) error {
	namer := names.New()

	nsNames := make(map[string]bool, len(api.Namespaces))
	for _, ns := range api.Namespaces {
		nsNames[ns.Name] = true
	}

	for _, ns := range api.Namespaces {
		if err := checkDeclaredNames(namer, ns); err != nil {
			return err
		}
	}

	for _, ns := range api.Namespaces {
		nsDir := filepath.Join(workingDir, cfg.Output.Path, ns.Name)

		if ns.Doc != "" {
			if err := writeNamespaceDoc(cfg, nsDir, ns); err != nil {
				return err
			}
		}

		for _, dt := range ns.Types {
			g := &generator{
				namer:   namer,
				pkg:     cfg.Package.Path,
				ns:      ns,
				nsNames: nsNames,
			}

			f := newNamespaceFile(cfg, ns)

			var err error
			switch t := dt.(type) {
			case *schema.Struct:
				err = g.genStruct(f, t)
			case *schema.Union:
				err = g.genUnion(f, t)
			}
			if err != nil {
				return fmt.Errorf(`failed to generate type "%s.%s": %w`, ns.Name, dt.TypeName(), err)
			}

			filePath := filepath.Join(nsDir, namer.Public(dt.TypeName())+".go")
			if err := writeGenFile(f, filePath); err != nil {
				return fmt.Errorf(`failed to write "%s": %w`, filePath, err)
			}

			log.Debug().
				Str("type", fmt.Sprintf("%s.%s", ns.Name, dt.TypeName())).
				Str("file", filePath).
				Msg("generated type")
		}
	}

	return nil
}

// checkDeclaredNames rejects a namespace whose generated package-level names
// collide: distinct schema names may collapse to one public Go name, and a
// union variant's wrapper type may land on the name of another declaration.
// Within a single package no qualification can separate the two, so the run
// fails before any file is emitted.
func checkDeclaredNames(namer *names.Namer, ns *schema.Namespace) error {
	declared := map[string]string{}

	declare := func(name, owner string) error {
		if prev, ok := declared[name]; ok {
			return fmt.Errorf(`namespace "%s": generated name "%s" of %s collides with %s`,
				ns.Name, name, owner, prev)
		}
		declared[name] = owner
		return nil
	}

	for _, dt := range ns.Types {
		public := namer.Public(dt.TypeName())

		switch t := dt.(type) {
		case *schema.Struct:
			if err := declare(public, fmt.Sprintf(`struct "%s"`, t.Name)); err != nil {
				return err
			}
			if t.HasEnumeratedSubtypes() {
				if err := declare(public+"Kind", fmt.Sprintf(`the family interface of "%s"`, t.Name)); err != nil {
					return err
				}
			}
		case *schema.Union:
			if err := declare(public, fmt.Sprintf(`union "%s"`, t.Name)); err != nil {
				return err
			}
			for _, v := range t.Fields {
				owner := fmt.Sprintf(`variant "%s" of union "%s"`, v.Name, t.Name)
				if err := declare(public+namer.Public(v.Name), owner); err != nil {
					return err
				}
			}
		}
	}

	return nil
}

func newNamespaceFile(cfg config.Config, ns *schema.Namespace) *jen.File {
	f := jen.NewFilePathName(path.Join(cfg.Package.Path, ns.Name), ns.Name)
	f.HeaderComment(generatedHeader)
	return f
}

// writeNamespaceDoc emits a doc.go carrying the namespace's documentation as
// the package comment.
func writeNamespaceDoc(cfg config.Config, nsDir string, ns *schema.Namespace) error {
	f := jen.NewFilePathName(path.Join(cfg.Package.Path, ns.Name), ns.Name)
	f.HeaderComment(generatedHeader)
	f.PackageComment(fmt.Sprintf("Package %s : %s", ns.Name, ns.Doc))

	filePath := filepath.Join(nsDir, "doc.go")
	if err := writeGenFile(f, filePath); err != nil {
		return fmt.Errorf(`failed to write "%s": %w`, filePath, err)
	}

	return nil
}

func writeGenFile(f *jen.File, filePath string) error {
	if err := os.MkdirAll(path.Dir(filePath), 0700); err != nil {
		return err
	}

	return os.WriteFile(filePath, []byte(f.GoString()), 0600)
}
