// Package drive wraps the Google Drive v3 API behind the installed-app
// OAuth flow: credentials.json supplies the client config, token.json
// persists the user grant between runs.
package drive

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	gdrive "google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
)

type Client struct {
	credsPath string
	tokenPath string

	mu  sync.Mutex
	svc *gdrive.Service
}

func NewClient(credsPath, tokenPath string) *Client {
	return &Client{credsPath: credsPath, tokenPath: tokenPath}
}

// IsAuthenticated reports whether a stored token is valid or refreshable.
func (c *Client) IsAuthenticated() bool {
	tok, err := c.loadToken()
	if err != nil {
		return false
	}
	return tok.Valid() || tok.RefreshToken != ""
}

// AuthURL returns the consent URL the user must visit to grant access.
func (c *Client) AuthURL() (string, error) {
	cfg, err := c.oauthConfig()
	if err != nil {
		return "", err
	}
	return cfg.AuthCodeURL("state-token", oauth2.AccessTypeOffline), nil
}

// Exchange trades an authorization code for a token and persists it.
func (c *Client) Exchange(ctx context.Context, code string) error {
	cfg, err := c.oauthConfig()
	if err != nil {
		return err
	}
	tok, err := cfg.Exchange(ctx, code)
	if err != nil {
		return fmt.Errorf("oauth exchange: %w", err)
	}
	if err := c.saveToken(tok); err != nil {
		return err
	}

	c.mu.Lock()
	c.svc = nil // force rebuild with the new token
	c.mu.Unlock()
	return nil
}

// ListFiles lists non-trashed files under folderID ("" means My Drive root).
func (c *Client) ListFiles(ctx context.Context, folderID string) ([]*gdrive.File, error) {
	svc, err := c.service(ctx)
	if err != nil {
		return nil, err
	}

	if folderID == "" {
		folderID = "root"
	}
	query := fmt.Sprintf("'%s' in parents and trashed = false", folderID)

	res, err := svc.Files.List().
		Q(query).
		PageSize(100).
		Fields("nextPageToken, files(id, name, mimeType, modifiedTime, size, webViewLink, iconLink)").
		OrderBy("folder, name").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("drive list: %w", err)
	}
	return res.Files, nil
}

// DownloadFile fetches a file's content into destDir and returns the local
// path, which callers hand to the ingestion queue.
func (c *Client) DownloadFile(ctx context.Context, fileID, fileName, destDir string) (string, error) {
	svc, err := c.service(ctx)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return "", fmt.Errorf("create destination dir: %w", err)
	}

	resp, err := svc.Files.Get(fileID).Context(ctx).Download()
	if err != nil {
		return "", fmt.Errorf("drive download %s: %w", fileID, err)
	}
	defer resp.Body.Close()

	path := filepath.Join(destDir, filepath.Base(fileName))
	out, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer out.Close()

	if _, err := io.Copy(out, resp.Body); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return path, nil
}

func (c *Client) oauthConfig() (*oauth2.Config, error) {
	b, err := os.ReadFile(c.credsPath)
	if err != nil {
		return nil, fmt.Errorf("read credentials file: %w", err)
	}
	cfg, err := google.ConfigFromJSON(b, gdrive.DriveReadonlyScope)
	if err != nil {
		return nil, fmt.Errorf("parse credentials file: %w", err)
	}
	return cfg, nil
}

func (c *Client) loadToken() (*oauth2.Token, error) {
	b, err := os.ReadFile(c.tokenPath)
	if err != nil {
		return nil, err
	}
	var tok oauth2.Token
	if err := json.Unmarshal(b, &tok); err != nil {
		return nil, err
	}
	return &tok, nil
}

func (c *Client) saveToken(tok *oauth2.Token) error {
	b, err := json.Marshal(tok)
	if err != nil {
		return err
	}
	return os.WriteFile(c.tokenPath, b, 0o600)
}

func (c *Client) service(ctx context.Context) (*gdrive.Service, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.svc != nil {
		return c.svc, nil
	}

	cfg, err := c.oauthConfig()
	if err != nil {
		return nil, err
	}
	tok, err := c.loadToken()
	if err != nil {
		return nil, fmt.Errorf("not authenticated: %w", err)
	}

	svc, err := gdrive.NewService(ctx, option.WithHTTPClient(cfg.Client(ctx, tok)))
	if err != nil {
		return nil, fmt.Errorf("build drive service: %w", err)
	}
	c.svc = svc
	return svc, nil
}
