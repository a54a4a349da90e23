package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"puspa_backend/internal/assessment"
	"puspa_backend/internal/backend"
	"puspa_backend/internal/config"
	"puspa_backend/internal/repository"
	"puspa_backend/pkg/database"
	"puspa_backend/pkg/logger"
	"strings"
	"sync/atomic"
	"text/tabwriter"

	"github.com/kaptinlin/jsonrepair"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

func newSchemaCommand(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Inspect or import question schemas",
	}
	cmd.AddCommand(newSchemaCheckCommand())
	cmd.AddCommand(newSchemaImportCommand(opts))
	return cmd
}

func newSchemaCheckCommand() *cobra.Command {
	var category string

	cmd := &cobra.Command{
		Use:   "check <file>",
		Short: "Parse a schema file and report problems",
		Long: `Parses a schema file (JSON or YAML, bare group list or API envelope)
the same way the service does and reports:
  - groups and question counts
  - malformed fragments that fell back to defaults, with a suggested repair
  - answer types the form cannot render
  - conditional rules whose reference resolves to no question

Exit code: 0 if no problems, 1 otherwise`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var warnings atomic.Int64
			logger.InitConsole(cmd.ErrOrStderr(), zapcore.WarnLevel, func(e zapcore.Entry) error {
				warnings.Add(1)
				return nil
			})

			raw, err := readSchemaFile(args[0])
			if err != nil {
				return err
			}

			var bootstrap *assessment.GroupStub
			if category != "" {
				p, err := assessment.LookupProfile(assessment.Category(category))
				if err != nil {
					return err
				}
				bootstrap = p.Bootstrap
			}

			report := checkSchema(category, raw, bootstrap)
			report.Warnings = int(warnings.Load())
			report.write(cmd.OutOrStdout())

			if n := report.problems(); n > 0 {
				return fmt.Errorf("schema has %d problem(s)", n)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&category, "category", "", "category profile to apply (adds its bootstrap group)")
	return cmd
}

func newSchemaImportCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "import <category> <file>",
		Short: "Replace a category's questions in the local backend database",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			category := assessment.Category(args[0])
			if _, err := assessment.LookupProfile(category); err != nil {
				return err
			}

			cfg, err := opts.load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if cfg.Backend.Mode != config.BackendLocal {
				return fmt.Errorf("schema import requires backend.mode=%s", config.BackendLocal)
			}
			logger.InitConsole(cmd.ErrOrStderr(), zapcore.InfoLevel)

			raw, err := readSchemaFile(args[1])
			if err != nil {
				return err
			}
			if len(raw.Groups) == 0 {
				return errors.New("schema file contains no groups")
			}

			db, err := database.InitDB(&cfg.Database, cfg.Server.Mode)
			if err != nil {
				return fmt.Errorf("connect database: %w", err)
			}
			groups := backend.GroupsFromSchema(raw)
			if err := repository.NewAssessmentRepository(db).ReplaceGroups(string(category), groups); err != nil {
				return fmt.Errorf("import: %w", err)
			}

			if cfg.Redis.Enabled {
				rdb, err := database.InitRedis(&cfg.Redis)
				if err != nil {
					logger.Log.Warn("Redis unavailable, cached schema not cleared", zap.Error(err))
				} else {
					defer rdb.Close()
					if err := backend.NewCachedBackend(nil, rdb, 0).Invalidate(context.Background(), category); err != nil {
						logger.Log.Warn("Failed to clear cached schema", zap.Error(err))
					}
				}
			}

			questions := 0
			for _, g := range groups {
				questions += len(g.Questions)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d group(s), %d question(s) into %s\n", len(groups), questions, category)
			return nil
		},
	}
}

// readSchemaFile 按扩展名读取 YAML 或 JSON，YAML 先转成 JSON 再走同一套解析
func readSchemaFile(path string) (assessment.RawSchema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return assessment.RawSchema{}, fmt.Errorf("read schema: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		var doc any
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return assessment.RawSchema{}, fmt.Errorf("parse yaml: %w", err)
		}
		if data, err = json.Marshal(doc); err != nil {
			return assessment.RawSchema{}, fmt.Errorf("convert yaml: %w", err)
		}
	}

	return backend.DecodeSchema(data)
}

type groupReport struct {
	Key       string
	Title     string
	Questions int
}

type schemaReport struct {
	Category        string
	Groups          []groupReport
	UnknownTypes    []string
	UnresolvedRules []string
	Malformed       []string
	Warnings        int
}

func checkSchema(category string, raw assessment.RawSchema, bootstrap *assessment.GroupStub) schemaReport {
	schema := assessment.ParseSchema(category, raw, bootstrap)
	eval := assessment.NewEvaluator(schema)
	dispatch := assessment.NewDispatcher()
	store := assessment.InitStore(schema)

	report := schemaReport{Category: category}
	for _, g := range raw.Groups {
		for _, q := range g.Questions {
			report.Malformed = append(report.Malformed, malformedFragment(q.ID, "answer_options", q.AnswerOptions)...)
			report.Malformed = append(report.Malformed, malformedFragment(q.ID, "extra_schema", q.ExtraSchema)...)
		}
	}
	for _, g := range schema.Groups {
		report.Groups = append(report.Groups, groupReport{Key: g.Key, Title: g.Title, Questions: len(g.Questions)})

		for _, q := range g.Questions {
			if _, err := dispatch.Behavior(q.Type); err != nil {
				report.UnknownTypes = append(report.UnknownTypes, fmt.Sprintf("%d: %q", q.ID, q.Type))
			}
			for _, rule := range q.Extra.Rules {
				if _, ok := eval.Resolve(rule.When, store); !ok {
					report.UnresolvedRules = append(report.UnresolvedRules, fmt.Sprintf("%d: when=%q", q.ID, rule.When))
				}
			}
		}
	}
	return report
}

// malformedFragment 服务端对坏片段只使用默认值；这里给出修复后的文本供人工确认
func malformedFragment(id int, field string, raw json.RawMessage) []string {
	text, ok := assessment.Malformed(raw)
	if !ok {
		return nil
	}
	repaired, err := jsonrepair.JSONRepair(text)
	if err != nil {
		return []string{fmt.Sprintf("%d %s: no repair", id, field)}
	}
	return []string{fmt.Sprintf("%d %s: suggest %s", id, field, repaired)}
}

func (r schemaReport) problems() int {
	return len(r.UnknownTypes) + len(r.UnresolvedRules)
}

func (r schemaReport) write(out io.Writer) {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "GROUP\tTITLE\tQUESTIONS")
	total := 0
	for _, g := range r.Groups {
		fmt.Fprintf(w, "%s\t%s\t%d\n", g.Key, g.Title, g.Questions)
		total += g.Questions
	}
	w.Flush()

	fmt.Fprintf(out, "\n%d group(s), %d question(s), %d decode warning(s)\n", len(r.Groups), total, r.Warnings)
	for _, s := range r.UnknownTypes {
		fmt.Fprintf(out, "unknown answer type  %s\n", s)
	}
	for _, s := range r.UnresolvedRules {
		fmt.Fprintf(out, "unresolved rule      %s\n", s)
	}
	for _, s := range r.Malformed {
		fmt.Fprintf(out, "malformed fragment   %s\n", s)
	}
}
