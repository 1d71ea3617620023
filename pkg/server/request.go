package server

import (
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/labstack/echo/v4"

	"pagesort/pkg/inference"
	"pagesort/pkg/schema"
	"pagesort/pkg/sorter"
	"pagesort/pkg/utils"
)

// bindSortRequest decodes and checks a sort request. Returned errors wrap
// sorter.ErrInvalidRequest.
func bindSortRequest(c echo.Context) (schema.SortRequest, error) {
	var req schema.SortRequest
	if err := c.Bind(&req); err != nil {
		return req, fmt.Errorf("%w: %v", sorter.ErrInvalidRequest, err)
	}
	if err := sorter.CheckRequest(req); err != nil {
		return req, err
	}
	for _, img := range req.Images {
		if err := checkImage(img); err != nil {
			return req, err
		}
	}
	return req, nil
}

// checkImage accepts http(s) URLs as is and requires data URIs to carry a decodable image header.
func checkImage(img schema.PageImage) error {
	if inference.IsRemote(img.Data) {
		return nil
	}
	if !inference.IsDataURI(img.Data) {
		return fmt.Errorf("%w: image %q is neither a data URI nor an http(s) URL", sorter.ErrInvalidRequest, img.Name)
	}
	_, data, err := inference.DecodeDataURI(img.Data)
	if err != nil {
		return fmt.Errorf("%w: image %q: %v", sorter.ErrInvalidRequest, img.Name, err)
	}
	cfg, format, err := utils.ImageConfig(data)
	if err != nil {
		return fmt.Errorf("%w: image %q: %v", sorter.ErrInvalidRequest, img.Name, err)
	}
	log.Debug("page accepted", "name", img.Name, "format", format, "width", cfg.Width, "height", cfg.Height, "bytes", len(data))
	return nil
}

func respondError(c echo.Context, err error) error {
	return c.JSON(sorter.HTTPStatus(err), sorter.PayloadOf(err))
}
