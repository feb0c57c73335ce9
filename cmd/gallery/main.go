// gallery maintains the JSON manifests and image variants behind a static
// photo-gallery site.
package main

import (
	goflag "flag"
	"fmt"
	"os"
	"path/filepath"

	_ "image/jpeg"
	_ "image/png"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"k8s.io/klog/v2"

	"github.com/ettrafto/my-photo-gallery/pkg/gallery"
)

var (
	cfgPath     string
	inDir       string
	contentDir  string
	variantDir  string
	force       bool
	concurrency int
	yes         bool
)

func main() {
	klog.InitFlags(nil)
	rootCmd.PersistentFlags().AddGoFlagSet(goflag.CommandLine)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "gallery",
	Short: "Static photo-gallery manifest and variant pipeline",
}

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Scan source albums and reconcile manifests",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := loadConfig()
		if err != nil {
			return err
		}
		_, err = gallery.Run(c)
		return err
	},
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Rebuild whenever the source tree changes",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := loadConfig()
		if err != nil {
			return err
		}
		if _, err := gallery.Run(c); err != nil {
			return err
		}
		return watch(c)
	},
}

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete all generated manifests",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := loadConfig()
		if err != nil {
			return err
		}
		if !yes {
			return fmt.Errorf("reset deletes every manifest under %s; pass --yes to confirm", c.ContentDir)
		}
		return gallery.NewStore(c.ContentDir).Reset()
	},
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a config file with the current flag values",
	RunE: func(cmd *cobra.Command, args []string) error {
		fc := &gallery.FileConfig{
			InDir:       inDir,
			ContentDir:  contentDir,
			VariantDir:  variantDir,
			Concurrency: concurrency,
		}
		if err := gallery.WriteFileConfig(cfgPath, fc); err != nil {
			return err
		}
		fmt.Printf("configuration written to %s\n", cfgPath)
		return nil
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "View configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		fc, err := gallery.LoadFileConfig(cfgPath)
		if err != nil {
			return err
		}
		fmt.Printf("Configuration from %s:\n\n", cfgPath)
		fmt.Printf("In Dir:      %s\n", fc.InDir)
		fmt.Printf("Content Dir: %s\n", fc.ContentDir)
		fmt.Printf("Variant Dir: %s\n", fc.VariantDir)
		fmt.Printf("Concurrency: %d\n", fc.Concurrency)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", defaultConfigPath(), "path to TOML config file")
	rootCmd.PersistentFlags().StringVar(&inDir, "in", "", "root directory of source album subdirectories")
	rootCmd.PersistentFlags().StringVar(&contentDir, "content", "", "root directory for JSON manifests")
	rootCmd.PersistentFlags().StringVar(&variantDir, "variants", "", "root directory for generated image variants")
	rootCmd.PersistentFlags().IntVar(&concurrency, "concurrency", 0, "max concurrent image decodes per album")

	buildCmd.Flags().BoolVar(&force, "force", false, "regenerate variants even when destinations exist")
	resetCmd.Flags().BoolVar(&yes, "yes", false, "confirm deletion")

	configCmd.AddCommand(configInitCmd, configListCmd)
	rootCmd.AddCommand(buildCmd, watchCmd, resetCmd, configCmd)
}

// loadConfig merges flag values over the optional config file and checks
// the required roots.
func loadConfig() (*gallery.Config, error) {
	fc, err := gallery.LoadFileConfig(cfgPath)
	if err != nil {
		return nil, err
	}

	c := &gallery.Config{
		InDir:       inDir,
		ContentDir:  contentDir,
		VariantDir:  variantDir,
		Force:       force,
		Concurrency: concurrency,
	}
	c.Apply(fc)

	if c.InDir == "" {
		return nil, fmt.Errorf("--in is a required flag")
	}
	if c.ContentDir == "" {
		return nil, fmt.Errorf("--content is a required flag")
	}
	if c.VariantDir == "" {
		return nil, fmt.Errorf("--variants is a required flag")
	}
	return c, nil
}

func defaultConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "gallery.toml"
	}
	return filepath.Join(dir, "gallery", "config.toml")
}

// watch rebuilds on changes to the input tree.
func watch(c *gallery.Config) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("new watcher: %w", err)
	}
	defer w.Close()

	go func() {
		for {
			select {
			case event, ok := <-w.Events:
				if !ok {
					return
				}
				klog.Infof("event: %v", event)
				if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) || event.Has(fsnotify.Remove) {
					if _, err := gallery.Run(c); err != nil {
						klog.Errorf("rebuild failed: %v", err)
					}
				}
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				klog.Errorf("watch error: %v", err)
			}
		}
	}()

	dirs := []string{c.InDir}
	albums, err := gallery.Scan(c.InDir)
	if err != nil {
		return err
	}
	for _, a := range albums {
		dirs = append(dirs, a.Dir)
	}

	klog.Infof("watching %d dirs ...", len(dirs))
	for _, d := range dirs {
		if err := w.Add(d); err != nil {
			return fmt.Errorf("watch %s: %w", d, err)
		}
	}

	<-make(chan struct{})
	return nil
}
