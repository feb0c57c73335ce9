// autotag suggests album tags using Google AI and records them in each
// album's override file.
package main

import (
	"context"
	"flag"
	"os"

	_ "image/jpeg"
	_ "image/png"

	"google.golang.org/genai"
	"k8s.io/klog/v2"

	"github.com/ettrafto/my-photo-gallery/pkg/gallery"
)

var (
	dryRun    = flag.Bool("n", false, "dry-run mode, don't write override files")
	overwrite = flag.Bool("o", false, "suggest tags even for albums that already have some")
	inDir     = flag.String("in", "", "root directory of source album subdirectories")
	model     = flag.String("model", "gemini-2.5-flash", "model to use for tag suggestions")
)

func main() {
	klog.InitFlags(nil)
	flag.Parse()

	if *inDir == "" {
		klog.Exitf("--in is a required flag")
	}

	ctx := context.Background()
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: os.Getenv("GOOGLE_AI_API_KEY"),
	})
	if err != nil {
		klog.Exitf("genai client: %v", err)
	}

	albums, err := gallery.Scan(*inDir)
	if err != nil {
		klog.Exitf("scan failed: %v", err)
	}

	tagged := 0
	for _, a := range albums {
		if !*overwrite && a.Overrides != nil && len(a.Overrides.Tags) > 0 {
			klog.V(1).Infof("%s already tagged, skipping", a.Slug)
			continue
		}
		if len(a.Images) == 0 {
			continue
		}

		// the first image stands in for the album
		tags, err := gallery.SuggestTags(ctx, client, *model, a.Images[0])
		if err != nil {
			klog.Errorf("suggest failed for %s: %v", a.Slug, err)
			continue
		}
		if len(tags) > 5 {
			tags = tags[0:5]
		}
		klog.Infof("%s: suggested tags %v", a.Slug, tags)

		if err := gallery.MergeOverrideTags(a.Dir, tags, *dryRun); err != nil {
			klog.Errorf("merge failed for %s: %v", a.Slug, err)
			continue
		}
		tagged++
	}

	klog.Infof("autotag completed: tagged %d of %d albums", tagged, len(albums))
}
