package settings

const (
	BagProfile     string = "profile"
	BagSettings    string = "settings"
	BagSocialMedia string = "social_media"
)

// FieldKind selects the decoder for a stored string value.
type FieldKind int

const (
	KindString FieldKind = iota
	KindBool
	KindDate
	KindEpochDate
)

// The three key sets are fixed and non-overlapping. A logical field belongs
// to exactly one bag; anything else in a patch is silently dropped, which is
// how extra input fields are ignored.
var profileFields = map[string]FieldKind{
	"display_name":  KindString,
	"about":         KindString,
	"contact_email": KindString,
	"contact_name":  KindString,
	"country":       KindString,
	"logo_url":      KindString,
	"launched_on":   KindEpochDate,
}

var settingsFields = map[string]FieldKind{
	"owned":                        KindBool,
	"premiere_accepted":            KindBool,
	"pro_accepted":                 KindString,
	"loyalty_bonus_disabled":       KindBool,
	"net30_revenue_share_payments": KindBool,
	"display_revenue_share":        KindString,
	"test_site":                    KindBool,
	"payee_name_updated":           KindBool,
	"autoplay_enabled":             KindBool,
	"gdpr_consent":                 KindBool,
	"terminated_on":                KindDate,
}

var socialMediaFields = map[string]FieldKind{
	"facebook":  KindString,
	"twitter":   KindString,
	"instagram": KindString,
	"pinterest": KindString,
	"youtube":   KindString,
	"tiktok":    KindString,
}

var bagFields = map[string]map[string]FieldKind{
	BagProfile:     profileFields,
	BagSettings:    settingsFields,
	BagSocialMedia: socialMediaFields,
}

// FieldsFor returns the decoder table of a named bag.
func FieldsFor(bag string) map[string]FieldKind {
	return bagFields[bag]
}
