package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/shouni/visionary-gallery/internal/config"
	"github.com/shouni/visionary-gallery/pkg/service"
)

// options はルートコマンドの共通フラグです。
type options struct {
	cfgFile string
	yes     bool
	v       *viper.Viper
}

// NewRootCmd は visionary コマンドツリーを組み立てます。
func NewRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "visionary",
		Short: "AI image gallery backed by Gemini",
		Long: `visionary は作品ギャラリーを管理するツールです。
  - Gemini で画像を生成してカテゴリ別に保存
  - ローカル画像のアップロード
  - 作品の削除、初期化、ダウンロード
  - serve で JSON API を提供`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			opts.v = config.New(opts.cfgFile)
			return bindFlags(opts.v, cmd)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&opts.cfgFile, "config", "", "config file (default is $HOME/.config/visionary/config.toml)")
	flags.BoolVarP(&opts.yes, "yes", "y", false, "skip confirmation prompts")
	flags.String("log-level", "", "log level (debug, info, warn, error)")
	flags.String("storage", "", "storage backend (file, redis, memory)")
	flags.String("data-dir", "", "directory of the file storage backend")

	root.AddCommand(
		newListCmd(opts),
		newGenerateCmd(opts),
		newUploadCmd(opts),
		newDeleteCmd(opts),
		newResetCmd(opts),
		newDownloadCmd(opts),
		newCategoriesCmd(),
		newServeCmd(opts),
	)
	return root
}

// Execute はコマンドを実行し、失敗したら終了コード 1 で終了します。
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("Error: %v", err))
		os.Exit(1)
	}
}

func bindFlags(v *viper.Viper, cmd *cobra.Command) error {
	bindings := map[string]string{
		"log.level":       "log-level",
		"storage.backend": "storage",
		"storage.dir":     "data-dir",
	}
	for key, name := range bindings {
		f := cmd.Flags().Lookup(name)
		if f == nil || !f.Changed {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return err
		}
	}
	return nil
}

// withApp は設定を読み込んで依存関係を組み立て、fn を実行します。
func withApp(cmd *cobra.Command, opts *options, fn func(ctx context.Context, a *app) error) error {
	cfg, err := config.Load(opts.v)
	if err != nil {
		return err
	}
	log := setupLogger(cmd.ErrOrStderr(), cfg.Log.Level, cfg.Log.Format)

	var confirmer service.Confirmer = service.AlwaysConfirm
	if !opts.yes {
		confirmer = newStdinConfirmer(cmd.InOrStdin(), cmd.ErrOrStderr())
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	a, err := newApp(ctx, cfg, log, confirmer, colorNotifier{out: cmd.ErrOrStderr()})
	if err != nil {
		return err
	}
	defer a.Close()

	return fn(ctx, a)
}
