package main

import (
	"errors"
	"fmt"
	"mime"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"pagesort/pkg/diff"
	"pagesort/pkg/inference"
	"pagesort/pkg/schema"
	"pagesort/pkg/sorter"
	"pagesort/pkg/utils"
)

func newSortCmd() *cobra.Command {
	var (
		title    string
		chapter  float64
		out      string
		provider string
		model    string
		request  string
	)

	cmd := &cobra.Command{
		Use:   "sort [DIR]",
		Short: "Order the page images in a directory or a saved request",
		Example: `  pagesort sort ./uploads/ch12 --title "O Guardião" --chapter 12 --out order.json
  pagesort sort ./uploads/ch12 --provider gemini --model gemini-2.5-pro
  pagesort sort --request ch12.json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			var req schema.SortRequest
			var err error
			switch {
			case request != "" && len(args) > 0:
				return errors.New("pass either DIR or --request, not both")
			case request != "":
				req, err = loadRequest(request)
			case len(args) == 1:
				req, err = readChapter(args[0])
			default:
				return errors.New("a DIR or --request is required")
			}
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("title") || req.MangaTitle == "" {
				req.MangaTitle = title
			}
			if cmd.Flags().Changed("chapter") || req.ChapterNumber == 0 {
				req.ChapterNumber = chapter
			}

			var srt *sorter.Sorter
			switch {
			case provider != "":
				inf, err := inference.New(ctx, provider, model)
				if err != nil {
					return err
				}
				srt = sorter.New(inf)
			case model != "":
				return errors.New("--model requires --provider")
			default:
				srt = sorter.NewFromEnv(ctx)
			}

			result, err := srt.Sort(ctx, req, func(analyses []schema.PageAnalysis) {
				log.Info("pages analyzed", "count", len(analyses))
			})
			if err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), utils.PrettyJSON(sorter.PayloadOf(err)))
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), utils.PrettyJSON(result))
			diff.Orders(req.Names(), result.Order).Print(cmd.ErrOrStderr())

			if out != "" {
				if err := utils.Save(out, result); err != nil {
					return fmt.Errorf("writing %s: %w", out, err)
				}
				log.Info("order written", "path", out)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&title, "title", "t", "", "Title of the work")
	cmd.Flags().Float64VarP(&chapter, "chapter", "c", 0, "Chapter number")
	cmd.Flags().StringVarP(&out, "out", "o", "", "Write the result as JSON to this file")
	cmd.Flags().StringVar(&provider, "provider", "", "Inference provider, overrides INFERENCE_PROVIDER")
	cmd.Flags().StringVar(&model, "model", "", "Model name for --provider")
	cmd.Flags().StringVarP(&request, "request", "r", "", "Read a JSON sort request (the API request body) instead of a directory")

	return cmd
}

// readChapter loads every image in dir as a data URI page, in directory order. Files that
// are not images are skipped.
func readChapter(dir string) (schema.SortRequest, error) {
	var req schema.SortRequest
	entries, err := os.ReadDir(dir)
	if err != nil {
		return req, err
	}
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return req, err
		}
		_, format, err := utils.ImageConfig(data)
		if err != nil {
			log.Debug("skipping file", "path", path, "error", err)
			continue
		}
		mediaType := mime.TypeByExtension(filepath.Ext(entry.Name()))
		if mediaType == "" {
			mediaType = "image/" + format
		}
		req.Images = append(req.Images, schema.PageImage{
			Name: entry.Name(),
			Data: inference.EncodeDataURI(mediaType, data),
		})
	}
	if len(req.Images) == 0 {
		return req, fmt.Errorf("no images found in %s", dir)
	}
	return req, nil
}

// loadRequest reads a sort request saved in the API's JSON request format.
func loadRequest(path string) (schema.SortRequest, error) {
	if !utils.Exists(path) {
		return schema.SortRequest{}, fmt.Errorf("request file %s not found", path)
	}
	req, err := utils.Load[schema.SortRequest](path)
	if err != nil {
		return schema.SortRequest{}, fmt.Errorf("reading %s: %w", path, err)
	}
	if err := sorter.CheckRequest(req); err != nil {
		return schema.SortRequest{}, fmt.Errorf("%s: %w", path, err)
	}
	return req, nil
}
