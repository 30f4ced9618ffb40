package bili

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestNormalizeMissingID(t *testing.T) {
	_, err := Normalize(Dynamic{})
	if !errors.Is(err, ErrUnparseable) {
		t.Errorf("Expected ErrUnparseable for missing id, got %v", err)
	}
}

func TestNormalizeMissingAuthor(t *testing.T) {
	_, err := Normalize(Dynamic{IDStr: "123"})
	if !errors.Is(err, ErrUnparseable) {
		t.Errorf("Expected ErrUnparseable for missing author module, got %v", err)
	}
}

func TestNormalizeLegacyDrawEntry(t *testing.T) {
	raw := Dynamic{
		IDStr: "800000000000000001",
		Modules: DynamicModules{
			Author: &DynamicAuthor{Mid: 12345, Name: "painter", PubTs: 1700000000},
			Dynamic: &DynamicContent{
				Desc: &DynamicDesc{Text: "new sketch"},
				Major: &DynamicMajor{
					Type: "MAJOR_TYPE_DRAW",
					Draw: &MajorDraw{Items: []DrawItem{{Src: "http://a/1.jpg"}}},
				},
			},
		},
	}

	item, err := Normalize(raw)
	if err != nil {
		t.Fatal(err)
	}

	if item.ID != "800000000000000001" {
		t.Errorf("Expected id '800000000000000001', got '%s'", item.ID)
	}
	if item.AuthorID != "12345" {
		t.Errorf("Expected author id '12345', got '%s'", item.AuthorID)
	}
	if item.AuthorName != "painter" {
		t.Errorf("Expected author name 'painter', got '%s'", item.AuthorName)
	}
	if item.Content != "new sketch" {
		t.Errorf("Expected content 'new sketch', got '%s'", item.Content)
	}
	if len(item.Images) != 1 || item.Images[0] != "http://a/1.jpg" {
		t.Errorf("Expected exactly ['http://a/1.jpg'], got %v", item.Images)
	}
	if item.Kind != KindPost {
		t.Errorf("Expected kind post, got '%s'", item.Kind)
	}
	if item.URL != "https://t.bilibili.com/800000000000000001" {
		t.Errorf("Unexpected permalink: %s", item.URL)
	}
	// Legacy entries carry no separate title
	if item.Title != "" {
		t.Errorf("Expected empty title for draw entry, got '%s'", item.Title)
	}
}

func TestNormalizeOpusEntry(t *testing.T) {
	raw := Dynamic{
		IDStr: "800000000000000002",
		Modules: DynamicModules{
			Author: &DynamicAuthor{Mid: 67890, Name: "writer", PubTs: 1700000000},
			Dynamic: &DynamicContent{
				Major: &DynamicMajor{
					Type: "MAJOR_TYPE_OPUS",
					Opus: &MajorOpus{
						Title:   "weekly update",
						Summary: &OpusSummary{Text: "long form body"},
						Pics:    []OpusPicture{{URL: "http://a/2.jpg"}},
					},
				},
			},
		},
	}

	item, err := Normalize(raw)
	if err != nil {
		t.Fatal(err)
	}

	if item.Title != "weekly update" {
		t.Errorf("Expected opus title, got '%s'", item.Title)
	}
	if item.Content != "long form body" {
		t.Errorf("Expected opus summary as content, got '%s'", item.Content)
	}
	if len(item.Images) != 1 || item.Images[0] != "http://a/2.jpg" {
		t.Errorf("Expected exactly ['http://a/2.jpg'], got %v", item.Images)
	}
}

func TestNormalizeDescWinsOverOpusSummary(t *testing.T) {
	raw := Dynamic{
		IDStr: "1",
		Modules: DynamicModules{
			Author: &DynamicAuthor{Mid: 1, Name: "a"},
			Dynamic: &DynamicContent{
				Desc: &DynamicDesc{Text: "desc text"},
				Major: &DynamicMajor{
					Type: "MAJOR_TYPE_OPUS",
					Opus: &MajorOpus{Summary: &OpusSummary{Text: "summary text"}},
				},
			},
		},
	}

	item, err := Normalize(raw)
	if err != nil {
		t.Fatal(err)
	}
	if item.Content != "desc text" {
		t.Errorf("Structured desc should win over opus summary, got '%s'", item.Content)
	}
}

func TestNormalizeImageOrderPreserved(t *testing.T) {
	raw := Dynamic{
		IDStr: "1",
		Modules: DynamicModules{
			Author: &DynamicAuthor{Mid: 1, Name: "a"},
			Dynamic: &DynamicContent{
				Major: &DynamicMajor{
					Type: "MAJOR_TYPE_DRAW",
					Draw: &MajorDraw{Items: []DrawItem{
						{Src: "http://a/1.jpg"},
						{Src: ""},
						{Src: "http://a/2.jpg"},
						{Src: "http://a/3.jpg"},
					}},
				},
			},
		},
	}

	item, err := Normalize(raw)
	if err != nil {
		t.Fatal(err)
	}

	want := []string{"http://a/1.jpg", "http://a/2.jpg", "http://a/3.jpg"}
	if len(item.Images) != len(want) {
		t.Fatalf("Expected %d images, got %d", len(want), len(item.Images))
	}
	for i, url := range want {
		if item.Images[i] != url {
			t.Errorf("Image %d: expected %s, got %s", i, url, item.Images[i])
		}
	}
}

func TestNormalizePublishTime(t *testing.T) {
	// 2023-11-15 06:13:20 UTC == 14:13:20 at UTC+8
	raw := Dynamic{
		IDStr:        "1",
		PubTimestamp: 1600000000, // legacy value, must lose
		Modules: DynamicModules{
			Author: &DynamicAuthor{Mid: 1, Name: "a", PubTs: 1700028800},
		},
	}

	item, err := Normalize(raw)
	if err != nil {
		t.Fatal(err)
	}

	if item.PublishedAt == nil {
		t.Fatal("Expected publish time, got nil")
	}
	if got := item.PublishedAt.Unix(); got != 1700028800 {
		t.Errorf("Author-embedded pub_ts should win, got unix %d", got)
	}
	_, offset := item.PublishedAt.Zone()
	if offset != 8*60*60 {
		t.Errorf("Expected fixed UTC+8 offset, got %d seconds", offset)
	}
}

func TestNormalizeLegacyTimestampFallback(t *testing.T) {
	raw := Dynamic{
		IDStr:        "1",
		PubTimestamp: 1600000000,
		Modules: DynamicModules{
			Author: &DynamicAuthor{Mid: 1, Name: "a"},
		},
	}

	item, err := Normalize(raw)
	if err != nil {
		t.Fatal(err)
	}
	if item.PublishedAt == nil || item.PublishedAt.Unix() != 1600000000 {
		t.Errorf("Expected legacy timestamp fallback, got %v", item.PublishedAt)
	}
}

func TestNormalizeUnknownPublishTime(t *testing.T) {
	raw := Dynamic{
		IDStr: "1",
		Modules: DynamicModules{
			Author: &DynamicAuthor{Mid: 1, Name: "a"},
		},
	}

	item, err := Normalize(raw)
	if err != nil {
		t.Fatal(err)
	}
	if item.PublishedAt != nil {
		t.Errorf("Zero timestamp should normalize to nil, got %v", item.PublishedAt)
	}
}

func TestNormalizeFromWirePayload(t *testing.T) {
	// Shape as returned by the feed endpoint
	payload := `{
		"id_str": "999",
		"modules": {
			"module_author": {"mid": 42, "name": "creator", "pub_ts": 1700000000},
			"module_dynamic": {
				"desc": {"text": "hello"},
				"major": {
					"type": "MAJOR_TYPE_DRAW",
					"draw": {"items": [{"src": "http://img/1.png"}, {"src": "http://img/2.png"}]}
				}
			}
		}
	}`

	var raw Dynamic
	if err := json.Unmarshal([]byte(payload), &raw); err != nil {
		t.Fatal(err)
	}

	item, err := Normalize(raw)
	if err != nil {
		t.Fatal(err)
	}
	if item.ID != "999" || item.AuthorID != "42" || len(item.Images) != 2 {
		t.Errorf("Unexpected normalization result: %+v", item)
	}
}

func TestVideoItem(t *testing.T) {
	v := Video{
		BVID:        "BV1xx411c7mD",
		Title:       "new upload",
		Description: "about things",
		Created:     1700000000,
		Author:      "creator",
		Mid:         42,
	}

	item := VideoItem(v)

	if item.ID != "video_BV1xx411c7mD" {
		t.Errorf("Expected synthetic video id, got '%s'", item.ID)
	}
	if item.Kind != KindVideo {
		t.Errorf("Expected kind video, got '%s'", item.Kind)
	}
	if item.URL != "https://www.bilibili.com/video/BV1xx411c7mD" {
		t.Errorf("Unexpected video permalink: %s", item.URL)
	}
	if item.AuthorID != "42" {
		t.Errorf("Expected author id '42', got '%s'", item.AuthorID)
	}
	if item.PublishedAt == nil || item.PublishedAt.Unix() != 1700000000 {
		t.Errorf("Unexpected publish time: %v", item.PublishedAt)
	}
}

func TestVideoItemStableID(t *testing.T) {
	v := Video{BVID: "BV1", Mid: 1}
	a := VideoItem(v)
	b := VideoItem(v)
	if a.ID != b.ID {
		t.Errorf("Same upstream video must normalize to the same id: %s vs %s", a.ID, b.ID)
	}
	if a.PublishedAt != nil {
		t.Errorf("Zero created timestamp should yield nil publish time, got %v", a.PublishedAt)
	}
}
