// Copyright (c) 2026 Vizion. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"

	"github.com/taibuivan/vizion/internal/app"
	"github.com/taibuivan/vizion/internal/images"
	"github.com/taibuivan/vizion/internal/platform/constants"
)

// # Gallery Commands

func (r *runner) imagesCommand() *cli.Command {
	return &cli.Command{
		Name:  "images",
		Usage: "browse and manage your gallery",
		Subcommands: []*cli.Command{
			{
				Name:  "list",
				Usage: "list images, newest first",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "search", Aliases: []string{"s"}, Usage: "only names containing this text"},
				},
				Action: r.listImages,
			},
			{
				Name:      "show",
				Usage:     "show one image",
				ArgsUsage: "ID",
				Action:    r.showImage,
			},
			{
				Name:      "upload",
				Usage:     "upload image files",
				ArgsUsage: "FILE...",
				Action:    r.uploadImages,
			},
			{
				Name:      "delete",
				Usage:     "delete an image",
				ArgsUsage: "ID",
				Action:    r.deleteImage,
			},
			{
				Name:      "download",
				Usage:     "save an image to disk",
				ArgsUsage: "ID",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "destination file, - for stdout (defaults to the original name)"},
				},
				Action: r.downloadImage,
			},
		},
	}
}

func (r *runner) listImages(c *cli.Context) error {
	return r.withSession(c, func(_ context.Context, application *app.App) error {
		store := application.Images
		if err := store.Err(); err != nil {
			return err
		}

		store.SetSearchQuery(c.String("search"))
		list := store.Filtered()

		if len(list) == 0 {
			if store.SearchQuery() != "" {
				r.printf("No images match your search\n")
			} else {
				r.printf("No images yet\n")
			}
			return nil
		}

		table := tabwriter.NewWriter(r.stdout, 0, 0, 2, ' ', 0)
		_, _ = fmt.Fprintln(table, "ID\tNAME\tSIZE\tDIMENSIONS\tCREATED")
		for _, img := range list {
			_, _ = fmt.Fprintf(table, "%s\t%s\t%s\t%dx%d\t%s\n",
				img.ID,
				img.OriginalName,
				images.FormatSize(img.Size),
				img.Dimensions.Width, img.Dimensions.Height,
				images.FormatCreated(img.CreatedAt),
			)
		}
		return table.Flush()
	})
}

func (r *runner) showImage(c *cli.Context) error {
	id, err := argument(c, "ID")
	if err != nil {
		return err
	}

	return r.withSession(c, func(ctx context.Context, application *app.App) error {
		img, err := application.Images.GetOrLoad(ctx, id)
		if err != nil {
			return err
		}

		r.printf("ID:          %s\n", img.ID)
		r.printf("Name:        %s\n", img.OriginalName)
		r.printf("Type:        %s\n", img.MimeType)
		r.printf("Size:        %s\n", images.FormatSize(img.Size))
		r.printf("Dimensions:  %dx%d (%s)\n", img.Dimensions.Width, img.Dimensions.Height, img.Dimensions.Format)
		r.printf("Uploaded:    %s\n", images.FormatCreated(img.CreatedAt))
		if img.HasURL() {
			r.printf("URL:         %s\n", img.URL)
		}
		return nil
	})
}

// uploadImages uploads every file concurrently. A failed file is reported
// and does not stop the others.
func (r *runner) uploadImages(c *cli.Context) error {
	if c.NArg() == 0 {
		return errors.New("expected at least one FILE argument")
	}
	paths := c.Args().Slice()

	return r.withSession(c, func(ctx context.Context, application *app.App) error {
		var group errgroup.Group
		group.SetLimit(constants.MaxConcurrentUploads)

		for _, path := range paths {
			path := path
			group.Go(func() error {
				content, err := os.ReadFile(path)
				if err != nil {
					r.printError(err)
					return err
				}

				img, err := application.Images.Upload(ctx, content, filepath.Base(path))
				if err != nil {
					r.printError(fileError{name: filepath.Base(path), err: err})
					return err
				}

				r.printf("Image uploaded successfully: %s (%s)\n", img.OriginalName, img.ID)
				return nil
			})
		}

		if err := group.Wait(); err != nil {
			return errors.New("some uploads failed")
		}
		return nil
	})
}

func (r *runner) deleteImage(c *cli.Context) error {
	id, err := argument(c, "ID")
	if err != nil {
		return err
	}

	return r.withSession(c, func(ctx context.Context, application *app.App) error {
		if err := application.Images.Delete(ctx, id); err != nil {
			return err
		}
		r.printf("Image deleted successfully\n")
		return nil
	})
}

func (r *runner) downloadImage(c *cli.Context) error {
	id, err := argument(c, "ID")
	if err != nil {
		return err
	}

	return r.withSession(c, func(ctx context.Context, application *app.App) error {
		img, err := application.Images.GetOrLoad(ctx, id)
		if err != nil {
			return err
		}

		output := c.String("output")
		if output == "" {
			output = filepath.Base(img.OriginalName)
		}

		if output == "-" {
			_, err := application.Gallery.Download(ctx, *img, r.stdout)
			return err
		}

		written, err := r.downloadTo(ctx, application, *img, output)
		if err != nil {
			return err
		}
		r.printf("Saved %s (%s)\n", output, images.FormatSize(written))
		return nil
	})
}

func (r *runner) downloadTo(ctx context.Context, application *app.App, img images.Image, output string) (int64, error) {
	file, err := os.Create(output)
	if err != nil {
		return 0, err
	}

	written, err := application.Gallery.Download(ctx, img, file)
	if closeErr := file.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(output)
		return 0, err
	}
	return written, nil
}

// fileError prefixes a displayable message with the file it concerns.
type fileError struct {
	name string
	err  error
}

func (e fileError) Error() string { return e.name + ": " + displayMessage(e.err) }

func (e fileError) Unwrap() error { return e.err }
