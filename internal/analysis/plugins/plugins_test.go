package plugins

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pressmapapp/pressmap-server/internal/domain"
)

func row(postID int, key string) domain.PostMeta {
	return domain.PostMeta{PostID: postID, MetaKey: key}
}

func TestDetect(t *testing.T) {
	meta := []domain.PostMeta{
		row(1, "_yoast_wpseo_title"),
		row(1, "_yoast_wpseo_metadesc"),
		row(2, "_yoast_wpseo_title"),
		row(2, "_elementor_data"),
		row(3, "_et_pb_use_builder"),
		row(3, "_thumbnail_id"),
		row(3, "custom_field"),
	}

	report := Detect(meta)

	assert.Equal(t, 6, report.TotalMetaKeys)
	assert.Equal(t, 2, report.UnmatchedKeys)
	assert.Len(t, report.Detections, 3)

	// Detections come out by distinct key count, heaviest first;
	// single-key plugins keep rule table order among themselves.
	yoast := report.Detections[0]
	assert.Equal(t, "yoast", yoast.Slug)
	assert.Equal(t, 2, yoast.PostsAffected)
	assert.Equal(t, 2, yoast.KeyCount)
	assert.Equal(t, []string{"_yoast_wpseo_metadesc", "_yoast_wpseo_title"}, yoast.SampleKeys)

	assert.Equal(t, "elementor", report.Detections[1].Slug)
	assert.Equal(t, "divi", report.Detections[2].Slug)
}

func TestDetectOrderedByKeyCount(t *testing.T) {
	// Divi is last in the rule table but dominates the meta rows, so it
	// must lead the report.
	meta := []domain.PostMeta{
		row(1, "_yoast_wpseo_title"),
		row(1, "_et_pb_use_builder"),
		row(1, "_et_pb_old_content"),
		row(2, "_et_pb_page_layout"),
	}

	report := Detect(meta)

	assert.Equal(t, "divi", report.Detections[0].Slug)
	assert.Equal(t, 3, report.Detections[0].KeyCount)
	assert.Equal(t, "yoast", report.Detections[1].Slug)
}

func TestDetectAIOSEOVersionsSplit(t *testing.T) {
	// _aioseop_ (v3) and _aioseo_ (v4) are distinct plugins in the
	// table and must not claim each other's keys.
	meta := []domain.PostMeta{
		row(1, "_aioseop_title"),
		row(2, "_aioseo_title"),
	}

	report := Detect(meta)

	assert.Len(t, report.Detections, 2)
	assert.Equal(t, "aioseo", report.Detections[0].Slug)
	assert.Equal(t, 1, report.Detections[0].KeyCount)
	assert.Equal(t, "aioseo-v4", report.Detections[1].Slug)
	assert.Equal(t, 1, report.Detections[1].KeyCount)
	assert.Zero(t, report.UnmatchedKeys)
}

func TestDetectSampleKeysCapped(t *testing.T) {
	var meta []domain.PostMeta
	for i := 0; i < 10; i++ {
		meta = append(meta, row(1, fmt.Sprintf("_elementor_field_%02d", i)))
	}

	report := Detect(meta)

	det := report.Detections[0]
	assert.Equal(t, 10, det.KeyCount)
	assert.Len(t, det.SampleKeys, 6)
	assert.Equal(t, "_elementor_field_00", det.SampleKeys[0])
}

func TestDetectEmpty(t *testing.T) {
	report := Detect(nil)

	assert.Empty(t, report.Detections)
	assert.Zero(t, report.TotalMetaKeys)
	assert.Zero(t, report.UnmatchedKeys)
}
