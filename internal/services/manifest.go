package services

import (
	"net/url"

	"github.com/GregMSThompson/moneylog/internal/dto"
)

const (
	appID     = "my-money-log-pwa"
	appName   = "微時記帳"
	adminMark = " (管理版)"
)

// Manifest is the web-app manifest for the current access mode: with a key
// the installed app is labelled as the admin build and starts with the key.
func (c *controller) Manifest() dto.WebManifest {
	c.mu.RLock()
	key := c.state.AccessKey
	c.mu.RUnlock()
	return BuildManifest(key)
}

func BuildManifest(key string) dto.WebManifest {
	m := dto.WebManifest{
		ID:              appID,
		Name:            appName,
		ShortName:       appName,
		StartURL:        "index.html",
		Display:         "standalone",
		BackgroundColor: "#fff9f9",
		ThemeColor:      "#ffb7b2",
		Icons: []dto.ManifestIcon{
			{Src: "icon.svg", Sizes: "192x192", Type: "image/svg+xml"},
		},
	}
	if key != "" {
		m.Name += adminMark
		m.StartURL = "index.html?key=" + url.QueryEscape(key)
	}
	return m
}
