// resumeforge is the companion CLI: it renders documents with the same
// pipeline as the service, against a local typst binary.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/jessevdk/go-flags"
	"gopkg.in/yaml.v3"

	"github.com/rendis/resume-forge/internal/adapters/secondary/typstcompiler"
	"github.com/rendis/resume-forge/internal/core/entity"
	"github.com/rendis/resume-forge/internal/core/markup"
	"github.com/rendis/resume-forge/internal/core/service/docx"
	"github.com/rendis/resume-forge/internal/core/template"
	"github.com/rendis/resume-forge/internal/core/validation"
)

// Exit codes of the CLI contract.
const (
	exitOK          = 0
	exitOther       = 1
	exitUsage       = 2
	exitValidation  = 3
	exitNoTemplate  = 4
	exitCompilation = 5
)

func main() {
	os.Exit(run())
}

func run() int {
	parser := flags.NewParser(nil, flags.HelpFlag|flags.PassDoubleDash)
	parser.Name = "resumeforge"

	mustAddCommand(parser, "generate", "Render a document",
		"Validate the input file, render it with the named template and write the artifact.",
		&cmdGenerate{})
	mustAddCommand(parser, "list", "List available templates",
		"Print every registered template with its document type.",
		&cmdList{})
	mustAddCommand(parser, "info", "Show template metadata",
		"Print the metadata of one template.",
		&cmdInfo{})
	mustAddCommand(parser, "sample", "Write a sample input file",
		"Write a complete example payload for the document type.",
		&cmdSample{})

	if _, err := parser.Parse(); err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			fmt.Println(flagsErr.Message)
			return exitOK
		}
		fmt.Fprintln(os.Stderr, "error:", err)
		return exitCode(err)
	}
	return exitOK
}

func mustAddCommand(parser *flags.Parser, name, short, long string, cmd any) {
	if _, err := parser.AddCommand(name, short, long, cmd); err != nil {
		panic(err)
	}
}

// exitCode maps an error onto the CLI exit-code contract.
func exitCode(err error) int {
	var flagsErr *flags.Error
	if errors.As(err, &flagsErr) {
		return exitUsage
	}
	var svcErr *entity.ServiceError
	if !errors.As(err, &svcErr) {
		return exitOther
	}
	switch {
	case svcErr.Code == entity.CodeTemplateNotFound:
		return exitNoTemplate
	case svcErr.Code == entity.CodeCompilationFailed,
		svcErr.Code == entity.CodePDFGeneration,
		svcErr.Code == entity.CodeDependencyMissing:
		return exitCompilation
	case svcErr.Category == entity.CategoryValidation,
		svcErr.Category == entity.CategorySecurity:
		return exitValidation
	case svcErr.Code == entity.CodeInvalidParameter:
		return exitUsage
	}
	return exitOther
}

type cmdGenerate struct {
	Format string `long:"format" default:"pdf" choice:"pdf" choice:"typst" choice:"docx" description:"Output format"`
	Ultra  bool   `long:"ultra" description:"Enable the normalizing validation level"`
	Args   struct {
		DocType  string `positional-arg-name:"doc_type" description:"resume or cover_letter"`
		Template string `positional-arg-name:"template" description:"Template name"`
		Input    string `positional-arg-name:"input" description:"Input .json or .yaml file"`
		Output   string `positional-arg-name:"output" description:"Output file path"`
	} `positional-args:"true" required:"4"`
}

func (cmd *cmdGenerate) Execute([]string) error {
	docType, err := entity.ParseDocumentType(cmd.Args.DocType)
	if err != nil {
		return err
	}
	format, err := entity.ParseOutputFormat(cmd.Format)
	if err != nil {
		return err
	}
	data, err := readInput(cmd.Args.Input)
	if err != nil {
		return err
	}

	if cmd.Ultra {
		result, err := validation.Ultra(docType, data, false)
		if err != nil {
			return err
		}
		for _, w := range result.Warnings {
			fmt.Fprintln(os.Stderr, "warning:", w.Message)
		}
		data = result.Data
	} else {
		if data, err = validation.Standard(docType, data); err != nil {
			return err
		}
	}

	artifact, err := render(docType, cmd.Args.Template, data, format)
	if err != nil {
		return err
	}
	if err := os.WriteFile(cmd.Args.Output, artifact, 0o644); err != nil {
		return err
	}
	fmt.Printf("wrote %s (%d bytes)\n", cmd.Args.Output, len(artifact))
	return nil
}

func render(docType entity.DocumentType, tmpl string, data map[string]any, format entity.OutputFormat) ([]byte, error) {
	if format == entity.FormatDOCX {
		artifact, err := docx.NewGenerator().Generate(docType, data)
		if err != nil {
			return nil, err
		}
		return artifact.Bytes, nil
	}

	helper, err := template.New(docType, tmpl, data, template.Config{})
	if err != nil {
		return nil, err
	}
	source, err := helper.Render()
	if err != nil {
		return nil, err
	}
	if format == entity.FormatTypst {
		return []byte(source), nil
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	compiler := typstcompiler.New(typstcompiler.Options{
		BinPath:  os.Getenv("TYPST_BIN_PATH"),
		FontDirs: fontDirs(),
	}, logger)

	ctx := context.Background()
	if err := compiler.Warmup(ctx); err != nil {
		return nil, err
	}
	return compiler.Compile(ctx, source)
}

func fontDirs() []string {
	raw := os.Getenv("TYPST_FONT_DIRS")
	if raw == "" {
		return nil
	}
	return strings.Split(raw, string(os.PathListSeparator))
}

type cmdList struct{}

func (cmdList) Execute([]string) error {
	for _, info := range template.List("") {
		fmt.Printf("%-14s %-12s %s\n", info.DocumentType, info.Name, info.Description)
	}
	return nil
}

type cmdInfo struct {
	Args struct {
		DocType  string `positional-arg-name:"doc_type"`
		Template string `positional-arg-name:"template"`
	} `positional-args:"true" required:"2"`
}

func (cmd *cmdInfo) Execute([]string) error {
	docType, err := entity.ParseDocumentType(cmd.Args.DocType)
	if err != nil {
		return err
	}
	info, err := template.Get(docType, cmd.Args.Template)
	if err != nil {
		return err
	}
	out, err := json.MarshalIndent(info, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

type cmdSample struct {
	Args struct {
		DocType string `positional-arg-name:"doc_type"`
		Output  string `positional-arg-name:"out_file"`
	} `positional-args:"true" required:"2"`
}

func (cmd *cmdSample) Execute([]string) error {
	docType, err := entity.ParseDocumentType(cmd.Args.DocType)
	if err != nil {
		return err
	}

	sample := template.ExampleDocument(docType)
	var out []byte
	switch strings.ToLower(filepath.Ext(cmd.Args.Output)) {
	case ".yaml", ".yml":
		out, err = yaml.Marshal(sample)
	default:
		out, err = json.MarshalIndent(sample, "", "  ")
	}
	if err != nil {
		return err
	}

	path := filepath.Join(filepath.Dir(cmd.Args.Output), markup.SanitizeFilename(filepath.Base(cmd.Args.Output)))
	if err := os.WriteFile(path, out, 0o644); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", path)
	return nil
}

// readInput loads and decodes a .json or .yaml/.yml input file.
func readInput(path string) (map[string]any, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var data map[string]any
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(raw, &data); err != nil {
			return nil, entity.NewError(entity.CodeInvalidYAML,
				"input file is not valid YAML").WithCause(err)
		}
	default:
		if err := json.Unmarshal(raw, &data); err != nil {
			return nil, entity.NewError(entity.CodeInvalidJSON,
				"input file is not valid JSON").WithCause(err)
		}
	}
	return data, nil
}
