package domain

// Stats holds aggregate counts derived server-side.
// The client caches them until an explicit reload.
type Stats struct {
	TobaccosCount  int `json:"tobaccos_count"`
	MixesCount     int `json:"mixes_count"`
	FavoritesCount int `json:"favorites_count"`
}
