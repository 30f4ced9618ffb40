package bili

import (
	"time"
)

// Item kinds
const (
	KindPost  = "post"
	KindVideo = "video"
)

// Item is the canonical record produced by the normalizer. ID is the primary
// dedup key and is stable across retries of the same upstream entry.
type Item struct {
	ID          string
	AuthorID    string
	AuthorName  string
	Title       string
	Content     string
	Images      []string
	PublishedAt *time.Time // nil means unknown, not filterable by staleness
	Kind        string
	URL         string
}

// Video is one entry from a creator's upload listing.
type Video struct {
	BVID        string `json:"bvid"`
	AID         int64  `json:"aid"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Pic         string `json:"pic"`
	Created     int64  `json:"created"`
	Length      string `json:"length"`
	Author      string `json:"author"`
	Mid         int64  `json:"mid"`
}

// Dynamic is one raw entry from the dynamic feed. The upstream populates one
// of two divergent shapes per entry (legacy draw vs. opus), both decoded here
// and resolved by the normalizer.
type Dynamic struct {
	IDStr string `json:"id_str"`

	// Legacy top-level publish timestamp, superseded by module_author.pub_ts
	PubTimestamp int64 `json:"pub_timestamp"`

	Modules DynamicModules `json:"modules"`
}

type DynamicModules struct {
	Author  *DynamicAuthor  `json:"module_author"`
	Dynamic *DynamicContent `json:"module_dynamic"`
}

type DynamicAuthor struct {
	Mid   int64  `json:"mid"`
	Name  string `json:"name"`
	PubTs int64  `json:"pub_ts"`
}

type DynamicContent struct {
	Desc  *DynamicDesc  `json:"desc"`
	Major *DynamicMajor `json:"major"`
}

type DynamicDesc struct {
	Text string `json:"text"`
}

type DynamicMajor struct {
	Type string      `json:"type"`
	Draw *MajorDraw  `json:"draw"`
	Opus *MajorOpus  `json:"opus"`
}

type MajorDraw struct {
	Items []DrawItem `json:"items"`
}

type DrawItem struct {
	Src string `json:"src"`
}

type MajorOpus struct {
	Title   string        `json:"title"`
	Summary *OpusSummary  `json:"summary"`
	Pics    []OpusPicture `json:"pics"`
}

type OpusSummary struct {
	Text string `json:"text"`
}

type OpusPicture struct {
	URL string `json:"url"`
}

// UpdateProbe is the result of the cheap global update check.
type UpdateProbe struct {
	UpdateNum      int    `json:"update_num"`
	UpdateBaseline string `json:"update_baseline"`
}

// DynamicPage is one page of the global dynamic feed.
type DynamicPage struct {
	Items          []Dynamic `json:"items"`
	UpdateBaseline string    `json:"update_baseline"`
}
