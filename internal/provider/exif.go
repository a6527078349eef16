package provider

import (
	"context"
	"io"
	"log/slog"
	"net/http"

	exif "github.com/dsoprea/go-exif/v3"
	exifcommon "github.com/dsoprea/go-exif/v3/common"

	"github.com/osintdeck/osintdeck/internal/model"
)

// Image extracts EXIF metadata from an image URL. GPS coordinates,
// camera identifiers, software names, and timestamps all survive in
// EXIF far more often than uploaders expect.
type Image struct {
	client      *http.Client
	maxBodySize int64
	logger      *slog.Logger
}

// NewImage creates the image metadata adapter.
func NewImage(client *http.Client, maxBodySize int64, logger *slog.Logger) *Image {
	return &Image{client: client, maxBodySize: maxBodySize, logger: logger}
}

// Name implements Provider.
func (i *Image) Name() string { return "image" }

// Topic implements Provider.
func (i *Image) Topic() model.Topic { return model.TopicImage }

// Search implements Provider.
func (i *Image) Search(ctx context.Context, req model.SearchRequest, emit EmitFunc) error {
	i.logger.Debug("image metadata lookup", "url", req.Input)

	data, perr := i.fetch(ctx, req.Input)
	if perr != nil {
		emit(model.Failure(i.Name(), perr.Kind, perr.Message))
		return perr
	}

	report, perr := i.extract(req.Input, data)
	if perr != nil {
		emit(model.Failure(i.Name(), perr.Kind, perr.Message))
		return perr
	}

	emit(model.Success(i.Name(), report))
	return nil
}

// fetch downloads the image, capped at maxBodySize.
func (i *Image) fetch(ctx context.Context, imageURL string) ([]byte, *Error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return nil, NewError(model.ErrorKindInvalidInput, "build request: %v", err)
	}

	resp, err := i.client.Do(req)
	if err != nil {
		return nil, AsError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, NewError(classifyStatus(resp.StatusCode), "image fetch returned status %d", resp.StatusCode)
	}
	if resp.ContentLength > i.maxBodySize {
		return nil, NewError(model.ErrorKindInvalidInput, "image exceeds %d byte limit", i.maxBodySize)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, i.maxBodySize))
	if err != nil {
		return nil, AsError(err)
	}
	return data, nil
}

// extract builds the metadata report from raw image bytes.
func (i *Image) extract(imageURL string, data []byte) (model.EXIFReport, *Error) {
	report := model.EXIFReport{URL: imageURL}

	rawExif, err := exif.SearchAndExtractExif(data)
	if err != nil || rawExif == nil {
		return report, NewError(model.ErrorKindNotFound, "no EXIF metadata found in image")
	}

	entries, _, err := exif.GetFlatExifData(rawExif, nil)
	if err != nil {
		return report, NewError(model.ErrorKindUpstream, "parse EXIF metadata: %v", err)
	}

	for _, entry := range entries {
		report.Tags = append(report.Tags, model.EXIFTag{
			IFD:   entry.IfdPath,
			Name:  entry.TagName,
			Value: entry.Formatted,
		})

		switch entry.TagName {
		case "Make":
			report.CameraMake = entry.Formatted
		case "Model":
			report.CameraModel = entry.Formatted
		case "Software", "ProcessingSoftware":
			if report.Software == "" {
				report.Software = entry.Formatted
			}
		case "Artist", "XPAuthor":
			if report.Artist == "" {
				report.Artist = entry.Formatted
			}
		case "DateTimeOriginal":
			report.Taken = entry.Formatted
		case "DateTime", "DateTimeDigitized":
			if report.Taken == "" {
				report.Taken = entry.Formatted
			}
		}
	}
	report.TagCount = len(report.Tags)

	if lat, lon, ok := i.gpsCoordinates(rawExif); ok {
		report.HasGPS = true
		report.Latitude = lat
		report.Longitude = lon
	}

	return report, nil
}

// gpsCoordinates decodes the GPS IFD into decimal degrees.
func (i *Image) gpsCoordinates(rawExif []byte) (lat, lon float64, ok bool) {
	im, err := exifcommon.NewIfdMappingWithStandard()
	if err != nil {
		return 0, 0, false
	}

	_, index, err := exif.Collect(im, exif.NewTagIndex(), rawExif)
	if err != nil {
		return 0, 0, false
	}

	ifd, err := index.RootIfd.ChildWithIfdPath(exifcommon.IfdGpsInfoStandardIfdIdentity)
	if err != nil {
		return 0, 0, false
	}

	gi, err := ifd.GpsInfo()
	if err != nil {
		return 0, 0, false
	}
	return gi.Latitude.Decimal(), gi.Longitude.Decimal(), true
}
