// Copyright (c) 2026 ND Labs
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import "strings"

// DefaultLogo is the relative path of the bundled logo asset.
const DefaultLogo = "logo.png"

// DefaultAvatar is used for accounts registered without an avatar.
const DefaultAvatar = "https://api.dicebear.com/7.x/avataaars/svg?seed=default"

// SiteSettings is the singleton branding/theme record.
type SiteSettings struct {
	BrandName    string `json:"brandName"`
	LogoURL      string `json:"logoUrl"`
	PrimaryColor string `json:"primaryColor"`
	HeroTitle    string `json:"heroTitle"`
	HeroSubtitle string `json:"heroSubtitle"`
}

// DefaultSettings returns the settings used when nothing is persisted yet.
func DefaultSettings() SiteSettings {
	return SiteSettings{
		BrandName:    "EduSpace",
		LogoURL:      DefaultLogo,
		PrimaryColor: "#2563eb",
		HeroTitle:    "Học tập không giới hạn",
		HeroSubtitle: "Nền tảng khóa học trực tuyến của ND Labs",
	}
}

// ValidLogoURL reports whether a logo value is acceptable: either the
// bundled default path or a self-contained embedded image. Anything else
// (arbitrary URLs included) is rewritten to the default on load.
func ValidLogoURL(logo string) bool {
	return logo == DefaultLogo || strings.HasPrefix(logo, "data:image/")
}

// SanitizeLogo applies the logo whitelist rule in place. It returns true
// if the record had to be rewritten.
func (s *SiteSettings) SanitizeLogo() bool {
	if ValidLogoURL(s.LogoURL) {
		return false
	}
	s.LogoURL = DefaultLogo
	return true
}
