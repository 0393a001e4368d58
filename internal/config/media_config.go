package config

type MediaConfig interface {
	GetMediaBaseURL() string
	GetMediaDefaultPageSize() int
	GetMediaMaxPageSize() int
	GetMediaRateLimit() float64
	GetMediaRateBurst() int
}

type SearchConfig interface {
	GetSearchFallbackOnEmpty() bool
	GetSearchFallbackScanPages() int
}

type Media struct {
	v values
}

var _ MediaConfig = Media{}

func (m Media) GetMediaBaseURL() string {
	return m.v.MediaBaseURL
}

func (m Media) GetMediaDefaultPageSize() int {
	if m.v.MediaDefaultPageSize <= 0 {
		return 25
	}
	return m.v.MediaDefaultPageSize
}

func (m Media) GetMediaMaxPageSize() int {
	if m.v.MediaMaxPageSize <= 0 {
		return 100
	}
	return m.v.MediaMaxPageSize
}

func (m Media) GetMediaRateLimit() float64 {
	return m.v.MediaRateLimit
}

func (m Media) GetMediaRateBurst() int {
	if m.v.MediaRateBurst <= 0 {
		return 1
	}
	return m.v.MediaRateBurst
}

type Search struct {
	v values
}

var _ SearchConfig = Search{}

func (s Search) GetSearchFallbackOnEmpty() bool {
	return s.v.SearchFallbackOnEmpty
}

func (s Search) GetSearchFallbackScanPages() int {
	if s.v.SearchFallbackScanPages <= 0 {
		return 1
	}
	return s.v.SearchFallbackScanPages
}
