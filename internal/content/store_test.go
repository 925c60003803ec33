package content

import "testing"

func testIndex() *ContentIndex {
	return &ContentIndex{
		Root: "content",
		Themes: map[string]*ThemeIndex{
			"rhcsa": {
				Slug: "rhcsa",
				Meta: ThemeMeta{Title: "RHCSA"},
				Categories: map[string]*CategoryIndex{
					"storage": {
						Slug: "storage",
						Meta: CategoryMeta{Title: "Storage"},
						Subcategories: map[string]*SubcategoryIndex{
							"lvm": {
								Slug:      "lvm",
								Meta:      SubcategoryMeta{Title: "LVM"},
								Questions: []Question{{ID: "q1", Prompt: "p", Options: []string{"a", "b"}, CorrectIndices: []int{0}}},
							},
						},
					},
				},
			},
		},
	}
}

func TestStoreSnapshotIsolation(t *testing.T) {
	s := NewStore(testIndex())
	before := s.Index()

	s.SetSubcategory("rhcsa", "storage", &SubcategoryIndex{
		Slug: "lvm",
		Meta: SubcategoryMeta{Title: "LVM v2"},
	})

	// The snapshot taken before the update must still show the old node.
	old := before.Themes["rhcsa"].Categories["storage"].Subcategories["lvm"]
	if old.Meta.Title != "LVM" {
		t.Errorf("old snapshot title = %q, want LVM", old.Meta.Title)
	}
	if len(old.Questions) != 1 {
		t.Errorf("old snapshot questions = %d, want 1", len(old.Questions))
	}

	sub, ok := s.Subcategory("rhcsa", "storage", "lvm")
	if !ok {
		t.Fatal("subcategory missing after update")
	}
	if sub.Meta.Title != "LVM v2" {
		t.Errorf("new title = %q, want LVM v2", sub.Meta.Title)
	}
	if before == s.Index() {
		t.Error("root pointer unchanged after mutation")
	}
}

func TestStoreSetThemePreservesSiblings(t *testing.T) {
	idx := testIndex()
	idx.Themes["other"] = &ThemeIndex{Slug: "other", Categories: map[string]*CategoryIndex{}}
	s := NewStore(idx)

	s.SetTheme(&ThemeIndex{Slug: "rhcsa", Meta: ThemeMeta{Title: "RHCSA 9"}, Categories: map[string]*CategoryIndex{}})

	if _, ok := s.Theme("other"); !ok {
		t.Error("sibling theme lost after SetTheme")
	}
	th, _ := s.Theme("rhcsa")
	if th.Meta.Title != "RHCSA 9" {
		t.Errorf("title = %q, want RHCSA 9", th.Meta.Title)
	}
}

func TestStoreDeleteTheme(t *testing.T) {
	s := NewStore(testIndex())
	s.DeleteTheme("rhcsa")
	if _, ok := s.Theme("rhcsa"); ok {
		t.Error("theme still present after delete")
	}
	// Deleting again is harmless.
	s.DeleteTheme("rhcsa")
}

func TestStoreOrphanUpdatesAreNoOps(t *testing.T) {
	s := NewStore(testIndex())
	before := s.Index()

	if s.SetCategory("gone", &CategoryIndex{Slug: "c", Subcategories: map[string]*SubcategoryIndex{}}) {
		t.Error("SetCategory under absent theme reported success")
	}
	if s.SetSubcategory("rhcsa", "gone", &SubcategoryIndex{Slug: "s"}) {
		t.Error("SetSubcategory under absent category reported success")
	}
	if s.DeleteSubcategory("gone", "storage", "lvm") {
		t.Error("DeleteSubcategory under absent theme reported success")
	}

	if before != s.Index() {
		t.Error("index replaced by rejected updates")
	}
}

func TestStoreDeleteSubcategory(t *testing.T) {
	s := NewStore(testIndex())
	if !s.DeleteSubcategory("rhcsa", "storage", "lvm") {
		t.Fatal("DeleteSubcategory reported failure")
	}
	if _, ok := s.Subcategory("rhcsa", "storage", "lvm"); ok {
		t.Error("subcategory still present after delete")
	}
	// The parent category survives.
	th, _ := s.Theme("rhcsa")
	if _, ok := th.Categories["storage"]; !ok {
		t.Error("parent category removed along with subcategory")
	}
}
