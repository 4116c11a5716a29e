package plex

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/ewilliams-labs/cadenza/internal/core/domain"
	"github.com/ewilliams-labs/cadenza/internal/core/ports"
)

// Materialize creates a static audio playlist on the server from the ordered
// track list and returns its rating key. The engine result is the single
// source of truth; nothing is recomputed here.
func (c *Client) Materialize(ctx context.Context, res domain.Result) (string, error) {
	if res.Empty() {
		return "", fmt.Errorf("plex adapter: refusing to materialize an empty result")
	}

	machineID, err := c.machineIdentifier(ctx)
	if err != nil {
		return "", err
	}

	uri := fmt.Sprintf("server://%s/com.plexapp.plugins.library/library/metadata/%s",
		machineID, strings.Join(res.TrackIDs(), ","))
	q := url.Values{
		"type":  {"audio"},
		"smart": {"0"},
		"title": {res.Title},
		"uri":   {uri},
	}

	resp, err := c.do(ctx, http.MethodPost, "/playlists", q)
	if err != nil {
		return "", ports.CatalogUnavailableError{Op: "create playlist", Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return "", ports.CatalogUnavailableError{Op: "create playlist", Err: fmt.Errorf("plex adapter: status %d", resp.StatusCode)}
	}

	var created playlistResponse
	if err := decodeInto(resp, &created); err != nil {
		return "", ports.CatalogUnavailableError{Op: "create playlist", Err: err}
	}
	if len(created.MediaContainer.Metadata) == 0 {
		return "", ports.CatalogUnavailableError{Op: "create playlist", Err: fmt.Errorf("plex adapter: empty creation response")}
	}
	key := created.MediaContainer.Metadata[0].RatingKey

	if res.Description != "" {
		if err := c.setPlaylistSummary(ctx, key, res.Description); err != nil {
			// The playlist exists; a failed summary update is logged, not fatal.
			c.log.Warn().Err(err).Str("playlist", key).Msg("playlist summary update failed")
		}
	}

	return key, nil
}

func (c *Client) setPlaylistSummary(ctx context.Context, key, summary string) error {
	q := url.Values{"summary": {summary}}
	resp, err := c.do(ctx, http.MethodPut, "/playlists/"+key, q)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("plex adapter: status %d", resp.StatusCode)
	}
	return nil
}

func (c *Client) machineIdentifier(ctx context.Context) (string, error) {
	var identity serverIdentity
	if err := c.get(ctx, "server identity", "/identity", nil, &identity); err != nil {
		return "", err
	}
	if identity.MediaContainer.MachineIdentifier == "" {
		return "", ports.CatalogUnavailableError{Op: "server identity", Err: fmt.Errorf("plex adapter: missing machine identifier")}
	}
	return identity.MediaContainer.MachineIdentifier, nil
}
