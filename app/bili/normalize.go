package bili

import (
	"cmp"
	"fmt"
	"strconv"
	"time"
)

// Canonical publish times are fixed UTC+8 wall-clock regardless of where the
// process runs; the upstream reports epoch seconds.
var publishZone = time.FixedZone("UTC+8", 8*60*60)

// Normalize converts one raw dynamic feed entry into a canonical Item.
// A missing item ID or author block fails the entry with ErrUnparseable;
// every other field defaults to empty rather than failing.
func Normalize(raw Dynamic) (Item, error) {
	if raw.IDStr == "" {
		return Item{}, fmt.Errorf("%w: missing id_str", ErrUnparseable)
	}

	author := raw.Modules.Author
	if author == nil {
		return Item{}, fmt.Errorf("%w: entry %s has no author module", ErrUnparseable, raw.IDStr)
	}

	item := Item{
		ID:         raw.IDStr,
		AuthorID:   strconv.FormatInt(author.Mid, 10),
		AuthorName: author.Name,
		Kind:       KindPost,
		URL:        "https://t.bilibili.com/" + raw.IDStr,
	}

	// The author-embedded timestamp wins over the legacy top-level one
	if ts := cmp.Or(author.PubTs, raw.PubTimestamp); ts > 0 {
		published := time.Unix(ts, 0).In(publishZone)
		item.PublishedAt = &published
	}

	content := raw.Modules.Dynamic
	if content == nil {
		return item, nil
	}

	if content.Desc != nil {
		item.Content = content.Desc.Text
	}

	major := content.Major
	if major == nil {
		return item, nil
	}

	switch major.Type {
	case "MAJOR_TYPE_DRAW":
		if major.Draw != nil {
			for _, pic := range major.Draw.Items {
				if pic.Src != "" {
					item.Images = append(item.Images, pic.Src)
				}
			}
		}
	case "MAJOR_TYPE_OPUS":
		if major.Opus != nil {
			item.Title = major.Opus.Title
			if item.Content == "" && major.Opus.Summary != nil {
				item.Content = major.Opus.Summary.Text
			}
			for _, pic := range major.Opus.Pics {
				if pic.URL != "" {
					item.Images = append(item.Images, pic.URL)
				}
			}
		}
	}

	return item, nil
}

// VideoItem converts one upload listing entry into a canonical Item. The
// synthetic "video_" ID prefix keeps video and post keys disjoint in the
// dedup store.
func VideoItem(v Video) Item {
	item := Item{
		ID:         "video_" + v.BVID,
		AuthorID:   strconv.FormatInt(v.Mid, 10),
		AuthorName: v.Author,
		Title:      v.Title,
		Content:    v.Description,
		Kind:       KindVideo,
		URL:        "https://www.bilibili.com/video/" + v.BVID,
	}

	if v.Created > 0 {
		published := time.Unix(v.Created, 0).In(publishZone)
		item.PublishedAt = &published
	}

	return item
}
