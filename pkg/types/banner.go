package types

import "time"

type BannerType string

const (
	BannerSuccess BannerType = "success"
	BannerError   BannerType = "error"
	BannerInfo    BannerType = "info"
)

// BannerDismissAfter is how long a banner stays on screen.
const BannerDismissAfter = 5 * time.Second

type Banner struct {
	Text string
	Type BannerType
}

func (b Banner) Visible() bool {
	return b.Text != ""
}

func (b Banner) DismissAfterMS() int64 {
	return BannerDismissAfter.Milliseconds()
}

func ParseBannerType(s string) BannerType {
	switch BannerType(s) {
	case BannerSuccess, BannerError, BannerInfo:
		return BannerType(s)
	}
	return BannerInfo
}

func SuccessBanner(text string) Banner {
	return Banner{Text: text, Type: BannerSuccess}
}

func ErrorBanner(text string) Banner {
	return Banner{Text: text, Type: BannerError}
}

func InfoBanner(text string) Banner {
	return Banner{Text: text, Type: BannerInfo}
}
