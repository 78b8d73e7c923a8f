// Command dartlens serves Korean corporate registry lookups over HTTP and
// a small operational CLI.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/dartlens/dartlens/api"
	"github.com/dartlens/dartlens/internal/config"
	"github.com/dartlens/dartlens/internal/provider"
	"github.com/dartlens/dartlens/internal/providers"
	"github.com/dartlens/dartlens/internal/tools"
	"github.com/dartlens/dartlens/pkg/models"
)

var version = "0.3.0"

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "dartlens",
		Short:         "Korean corporate registry lookup service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to config file")

	root.AddCommand(serveCmd(&configPath))
	root.AddCommand(searchCmd(&configPath))
	root.AddCommand(statusCmd(&configPath))
	root.AddCommand(toolsCmd(&configPath))
	root.AddCommand(versionCmd())
	return root
}

// setup loads configuration and wires the provider and tool registries.
func setup(configPath string) (*config.Config, *provider.Registry, *tools.ToolRegistry, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, nil, err
	}
	reg := provider.NewRegistry()
	if err := providers.RegisterAllTo(reg, cfg.Dart.APIKey); err != nil {
		return nil, nil, nil, fmt.Errorf("register providers: %w", err)
	}
	tr := tools.NewToolRegistry()
	tools.RegisterLookupTools(tr, reg)
	return cfg, reg, tr, nil
}

func serveCmd(configPath *string) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the lookup tools over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, tr, err := setup(*configPath)
			if err != nil {
				return err
			}
			if addr == "" {
				addr = cfg.Server.Addr
			}
			for _, st := range config.CheckAPIKeys(cfg) {
				log.Printf("%s: %s", st.Name, st.Preview)
			}
			return api.NewServer(tr).Run(addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides config)")
	return cmd
}

func searchCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "search <query>",
		Short: "Search the corporate registry by name substring",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, reg, _, err := setup(*configPath)
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 90*time.Second)
			defer cancel()

			res, err := reg.Fetch(ctx, provider.ModelCompanySearch, provider.QueryParams{
				provider.ParamQuery: args[0],
			})
			if err != nil {
				return err
			}
			result := res.Data.(models.CompanySearchResult)
			fmt.Printf("%d companies match %q\n", result.Total, result.Query)
			for _, c := range result.Matches {
				listing := "unlisted"
				if c.Listed() {
					listing = c.StockCode
				}
				fmt.Printf("  %s  %-10s  %s\n", c.CorpCode, listing, c.CorpName)
			}
			return nil
		},
	}
}

func statusCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show credential status and upstream connectivity",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, reg, _, err := setup(*configPath)
			if err != nil {
				return err
			}
			for _, st := range config.CheckAPIKeys(cfg) {
				fmt.Printf("%s (%s): %s\n", st.Name, st.EnvVar, st.Preview)
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), 15*time.Second)
			defer cancel()
			for _, info := range reg.List() {
				p, err := reg.Get(info.Name)
				if err != nil {
					continue
				}
				if err := p.Ping(ctx); err != nil {
					fmt.Printf("%s: unreachable (%v)\n", info.Name, err)
					continue
				}
				fmt.Printf("%s: reachable, %d models\n", info.Name, len(info.Models))

				byCategory := make(map[string][]string)
				for _, m := range info.Models {
					cat := provider.ModelCategory(m)
					byCategory[cat] = append(byCategory[cat], string(m))
				}
				categories := make([]string, 0, len(byCategory))
				for cat := range byCategory {
					categories = append(categories, cat)
				}
				sort.Strings(categories)
				for _, cat := range categories {
					fmt.Printf("  %-12s %s\n", cat, strings.Join(byCategory[cat], ", "))
				}
			}
			return nil
		},
	}
}

func toolsCmd(configPath *string) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "tools",
		Short: "List the available lookup tools",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, _, tr, err := setup(*configPath)
			if err != nil {
				return err
			}
			if asJSON {
				out, err := json.MarshalIndent(tr.List(), "", "  ")
				if err != nil {
					return err
				}
				fmt.Println(string(out))
				return nil
			}
			for _, t := range tr.List() {
				fmt.Printf("%-30s %s\n", t.Name, t.Description)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "emit the tool list with schemas as JSON")
	return cmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("dartlens", version)
		},
	}
}
