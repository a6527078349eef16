package provider

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/osintdeck/osintdeck/internal/model"
)

// Google resolves a Google account from an email address by delegating
// to the ghunt CLI. ghunt holds its own authenticated session, so the
// lookup shells out instead of speaking the API directly.
type Google struct {
	command string
	logger  *slog.Logger
}

// NewGoogle creates the Google adapter. command is the ghunt binary
// name or path.
func NewGoogle(command string, logger *slog.Logger) *Google {
	return &Google{command: command, logger: logger}
}

// Name implements Provider.
func (g *Google) Name() string { return "google" }

// Topic implements Provider.
func (g *Google) Topic() model.Topic { return model.TopicGoogle }

// ghuntReport is the subset of ghunt's JSON export this adapter reads.
type ghuntReport struct {
	Profile struct {
		PersonID string `json:"personId"`
		Names    map[string]struct {
			FullName string `json:"fullname"`
		} `json:"names"`
		ProfilePhotos map[string]struct {
			URL string `json:"url"`
		} `json:"profilePhotos"`
		SourceIDs map[string]struct {
			LastUpdated string `json:"lastUpdated"`
		} `json:"sourceIds"`
		InAppReachability map[string]struct {
			Apps []string `json:"apps"`
		} `json:"inAppReachability"`
	} `json:"PROFILE_CONTAINER"`
}

// Search implements Provider.
func (g *Google) Search(ctx context.Context, req model.SearchRequest, emit EmitFunc) error {
	g.logger.Debug("google account lookup", "email", req.Input)

	tmpDir, err := os.MkdirTemp("", "osintdeck-ghunt-*")
	if err != nil {
		perr := NewError(model.ErrorKindInternal, "create scratch dir: %v", err)
		emit(model.Failure(g.Name(), perr.Kind, perr.Message))
		return perr
	}
	defer os.RemoveAll(tmpDir)

	outFile := filepath.Join(tmpDir, "report.json")
	cmd := exec.CommandContext(ctx, g.command, "email", "--json", outFile, req.Input)
	output, err := cmd.CombinedOutput()
	if err != nil {
		perr := g.classifyRunError(ctx, err, output)
		emit(model.Failure(g.Name(), perr.Kind, perr.Message))
		return perr
	}

	raw, err := os.ReadFile(outFile)
	if err != nil {
		perr := NewError(model.ErrorKindUpstream, "account lookup produced no report")
		emit(model.Failure(g.Name(), perr.Kind, perr.Message))
		return perr
	}

	var report ghuntReport
	if err := json.Unmarshal(raw, &report); err != nil {
		perr := NewError(model.ErrorKindUpstream, "decode report: %v", err)
		emit(model.Failure(g.Name(), perr.Kind, perr.Message))
		return perr
	}
	if report.Profile.PersonID == "" {
		perr := NewError(model.ErrorKindNotFound, "no Google account found for %q", req.Input)
		emit(model.Failure(g.Name(), perr.Kind, perr.Message))
		return perr
	}

	emit(model.Success(g.Name(), g.normalize(req.Input, report)))
	return nil
}

// classifyRunError maps a ghunt process failure to an error kind.
func (g *Google) classifyRunError(ctx context.Context, err error, output []byte) *Error {
	if ctx.Err() != nil {
		return AsError(ctx.Err())
	}
	if errors.Is(err, exec.ErrNotFound) {
		return NewError(model.ErrorKindInternal, "ghunt is not installed or not on PATH")
	}
	g.logger.Warn("ghunt failed", "error", err, "output", string(output))
	return NewError(model.ErrorKindUpstream, "account lookup failed: %v", err)
}

// normalize flattens the report's keyed containers into the payload.
// ghunt keys each container by profile source; any entry serves.
func (g *Google) normalize(email string, report ghuntReport) model.GoogleAccount {
	acct := model.GoogleAccount{
		Email:  email,
		GaiaID: report.Profile.PersonID,
	}
	for _, n := range report.Profile.Names {
		if n.FullName != "" {
			acct.Name = n.FullName
			break
		}
	}
	for _, p := range report.Profile.ProfilePhotos {
		if p.URL != "" {
			acct.ProfilePhoto = p.URL
			break
		}
	}
	for _, s := range report.Profile.SourceIDs {
		if s.LastUpdated != "" {
			acct.LastEdit = s.LastUpdated
			break
		}
	}
	for _, r := range report.Profile.InAppReachability {
		acct.Services = append(acct.Services, r.Apps...)
	}
	return acct
}
