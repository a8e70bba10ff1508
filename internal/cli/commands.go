package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"
	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/shouni/visionary-gallery/pkg/domain"
	"github.com/shouni/visionary-gallery/pkg/imgutil"
)

func parseCategoryFlag(raw string) (domain.Category, error) {
	c, ok := domain.ParseCategory(raw)
	if !ok {
		names := lo.Map(domain.Categories, func(c domain.Category, _ int) string { return string(c) })
		return "", fmt.Errorf("unknown category %q (one of %s)", raw, strings.Join(names, ", "))
	}
	return c, nil
}

func newListCmd(opts *options) *cobra.Command {
	var category string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List gallery items",
		Long: `List gallery items, newest first.

Examples:
  visionary list
  visionary list --category anime`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := parseCategoryFlag(category)
			if err != nil {
				return err
			}
			return withApp(cmd, opts, func(ctx context.Context, a *app) error {
				items := a.service.List(c)
				out := cmd.OutOrStdout()
				if len(items) == 0 {
					fmt.Fprintln(out, "No items found")
					return nil
				}

				w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
				fmt.Fprintln(w, color.New(color.Bold).Sprint("ID\tCATEGORY\tSOURCE\tCREATED\tPROMPT"))
				for _, it := range items {
					fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
						it.ID, it.Category.Label(), it.Source,
						it.Created().Local().Format(time.DateTime), summarize(it.Prompt, 40))
				}
				return w.Flush()
			})
		},
	}
	cmd.Flags().StringVarP(&category, "category", "c", string(domain.CategoryAll), "filter by category")
	return cmd
}

func newGenerateCmd(opts *options) *cobra.Command {
	var category, aspect string

	cmd := &cobra.Command{
		Use:   "generate <prompt>",
		Short: "Generate an image with Gemini and add it to the gallery",
		Long: `Generate an image with Gemini and add it to the gallery.

Examples:
  visionary generate --category anime "赛博城市"
  visionary generate -c landscape -a 16:9 "清晨的雾中群山"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := parseCategoryFlag(category)
			if err != nil {
				return err
			}
			req := domain.GenerationRequest{
				Prompt:      strings.Join(args, " "),
				Category:    c,
				AspectRatio: domain.AspectRatio(aspect),
			}
			return withApp(cmd, opts, func(ctx context.Context, a *app) error {
				fmt.Fprintln(cmd.ErrOrStderr(), color.CyanString("正在生成图片..."))
				item, err := a.service.Generate(ctx, req)
				if err != nil {
					var ge *domain.GenerationError
					if errors.As(err, &ge) {
						return fmt.Errorf("%s (%w)", domain.MsgGenerationFailed, err)
					}
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s [%s]\n", color.GreenString("✓"), item.ID, item.Category.Label())
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&category, "category", "c", string(domain.CategoryLandscape), "category of the image")
	cmd.Flags().StringVarP(&aspect, "aspect", "a", string(domain.AspectSquare), "aspect ratio (1:1, 16:9, 9:16)")
	return cmd
}

func newUploadCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "upload <file|uri>",
		Short: "Add a local image or gs:// / s3:// object (max 4MB) to the gallery",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(ctx context.Context, a *app) error {
				item, err := a.service.Upload(ctx, args[0])
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", color.GreenString("✓"), item.ID)
				return nil
			})
		},
	}
}

func newDeleteCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a gallery item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(ctx context.Context, a *app) error {
				removed, err := a.service.Delete(ctx, args[0])
				if err != nil {
					return err
				}
				if removed {
					fmt.Fprintf(cmd.OutOrStdout(), "%s deleted %s\n", color.GreenString("✓"), args[0])
				} else {
					fmt.Fprintln(cmd.OutOrStdout(), "Nothing deleted")
				}
				return nil
			})
		},
	}
}

func newResetCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Remove all generated and uploaded images and restore the defaults",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(ctx context.Context, a *app) error {
				done, err := a.service.Reset(ctx)
				if err != nil {
					return err
				}
				if done {
					fmt.Fprintf(cmd.OutOrStdout(), "%s gallery reset\n", color.GreenString("✓"))
				}
				return nil
			})
		},
	}
}

func newDownloadCmd(opts *options) *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "download <id>",
		Short: "Save the image of a gallery item to a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(ctx context.Context, a *app) error {
				target := dir
				if target == "" {
					target = a.cfg.Download.Dir
				}
				path, err := a.service.Download(ctx, args[0], target)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), path)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&dir, "dir", "d", "", "output directory or gs:// / s3:// prefix (default from download.dir)")
	return cmd
}

func newCategoriesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "List the available categories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			for _, c := range domain.Categories {
				fmt.Fprintf(w, "%s\t%s\n", c, c.Label())
			}
			return w.Flush()
		},
	}
}

// summarize は長いプロンプトを表示用に切り詰めます。data URI は種類だけ表示するのだ。
func summarize(s string, max int) string {
	if imgutil.IsDataURI(s) {
		return "(data URI)"
	}
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max]) + "…"
}
