package app_test

import (
	"context"
	"testing"

	"rental_sync/internal/app"
)

func TestImagePipeline_Extract(t *testing.T) {
	p := app.NewImagePipeline(testSettings(), &fakeMedia{}, &fakeSource{}, newFakeRepo())
	urls := p.Extract(decodeRaw(t, listingJSON))
	want := []string{"https://img.example/listing/p/1/a.jpg", "https://img.example/listing/p/1/b.jpg"}
	if len(urls) != len(want) {
		t.Fatalf("urls: %v", urls)
	}
	for i := range want {
		if urls[i] != want[i] {
			t.Fatalf("url %d: got %s want %s", i, urls[i], want[i])
		}
	}
}

func TestImagePipeline_ReusesExistingMedia(t *testing.T) {
	media := &fakeMedia{existing: map[string]int64{"a": 10}, nextID: 19}
	repo := newFakeRepo()
	p := app.NewImagePipeline(testSettings(), media, &fakeSource{}, repo)

	res, err := p.Upload(context.Background(), 7, []string{"https://img/x/a.jpg", "https://img/x/b.jpg"})
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if len(media.uploads) != 1 || media.uploads[0] != "b.jpg" {
		t.Fatalf("expected exactly one upload of b.jpg, got %v", media.uploads)
	}
	if len(repo.rows[7]) != 4 || repo.calls != 4 {
		t.Fatalf("expected 4 attribute records, got %d rows / %d calls", len(repo.rows[7]), repo.calls)
	}
	want := map[string]string{
		"header_slideshow_0_image":                 "10",
		"sections_2_gallery_images_0_gallery_image": "10",
		"header_slideshow_1_image":                 "20",
		"sections_2_gallery_images_1_gallery_image": "20",
	}
	for k, v := range want {
		if repo.rows[7][k] != v {
			t.Fatalf("%s = %q, want %q", k, repo.rows[7][k], v)
		}
	}
	if !res[0].Reused || res[1].Reused || len(res[1].Keys) != 2 {
		t.Fatalf("unexpected results: %+v", res)
	}
}

func TestImagePipeline_AccessDeniedIsSkipped(t *testing.T) {
	media := &fakeMedia{existing: map[string]int64{"a": 10}, denied: map[string]bool{"b.jpg": true}, nextID: 29}
	repo := newFakeRepo()
	p := app.NewImagePipeline(testSettings(), media, &fakeSource{}, repo)

	res, err := p.Upload(context.Background(), 7, []string{"https://img/x/a.jpg", "https://img/x/b.jpg", "https://img/x/c.jpg"})
	if err != nil {
		t.Fatalf("denied image must not abort: %v", err)
	}
	if len(res) != 2 || res[0].MediaID != 10 || res[1].MediaID != 30 {
		t.Fatalf("unexpected results: %+v", res)
	}
	if repo.rows[7]["header_slideshow_1_image"] != "30" || len(repo.rows[7]) != 4 {
		t.Fatalf("unexpected rows: %v", repo.rows[7])
	}
}

func TestImagePipeline_FallbackFetch(t *testing.T) {
	src := &fakeSource{missing: map[string]bool{"https://img/x/c.jpg": true}}
	media := &fakeMedia{}
	p := app.NewImagePipeline(testSettings(), media, src, newFakeRepo())

	if _, err := p.Upload(context.Background(), 1, []string{"https://img/x/c.jpg"}); err != nil {
		t.Fatalf("upload: %v", err)
	}
	if len(src.calls) != 2 || src.calls[1] != "https://img/x/c-medium.jpg" {
		t.Fatalf("expected fallback fetch, got %v", src.calls)
	}
	if len(media.uploads) != 1 {
		t.Fatalf("expected upload after fallback, got %v", media.uploads)
	}
}

func TestImagePipeline_UnavailableIsSkipped(t *testing.T) {
	src := &fakeSource{missing: map[string]bool{"https://img/x/c.jpg": true, "https://img/x/c-medium.jpg": true}}
	media := &fakeMedia{}
	repo := newFakeRepo()
	p := app.NewImagePipeline(testSettings(), media, src, repo)

	res, err := p.Upload(context.Background(), 1, []string{"https://img/x/c.jpg"})
	if err != nil || len(res) != 0 {
		t.Fatalf("expected skip, got %+v, %v", res, err)
	}
	if len(media.uploads) != 0 || repo.calls != 0 {
		t.Fatalf("nothing should be uploaded or written")
	}
}

func TestParseImageRef(t *testing.T) {
	ref := app.ParseImageRef("https://host/a/b/photo.final.jpg")
	if ref.Filename != "photo.final.jpg" || ref.BaseName != "photo.final" || ref.Extension != "jpg" {
		t.Fatalf("unexpected ref: %+v", ref)
	}
}
