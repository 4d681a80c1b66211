package preview

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"fivepack/internal/assets"
	"fivepack/internal/builder"
	"fivepack/internal/config"
	"fivepack/internal/packer"
	"fivepack/internal/testsupport"
)

var fixedNow = func() time.Time { return time.Date(2024, 3, 9, 14, 5, 7, 0, time.Local) }

func TestBuildPlansWithoutWriting(t *testing.T) {
	base := t.TempDir()
	first := filepath.Join(base, "Pack A")
	second := filepath.Join(base, "Pack B")
	testsupport.WriteTree(t, first, map[string]string{
		"skin.ytd":       "",
		"meta/shop.meta": "<ShopPedApparel/>",
		"preview.png":    "",
	})
	testsupport.WriteTree(t, second, map[string]string{
		"skin.ytd":     "",
		"creature.ymt": "",
	})
	dest := filepath.Join(base, "resources", "my_pack")

	plan, err := Build(builder.Request{
		Sources:      []string{first, second},
		Destination:  dest,
		ResourceName: "my_pack",
		Mode:         config.ModeMerge,
	}, fixedNow)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	if plan.Total() != 4 || plan.Duplicates != 1 {
		t.Fatalf("total=%d duplicates=%d", plan.Total(), plan.Duplicates)
	}
	var prefixed *Item
	for i := range plan.Items {
		if plan.Items[i].Placement.Step == packer.StepPrefixed {
			prefixed = &plan.Items[i]
		}
	}
	if prefixed == nil || prefixed.Placement.RelPath != "stream/Pack_B_skin.ytd" {
		t.Fatalf("expected prefixed placement, got %+v", prefixed)
	}
	for _, item := range plan.Items {
		if item.Placement.RelPath == "data/shop.meta" && item.DataType != assets.DataTypeShopPedApparel {
			t.Fatalf("shop.meta detected as %q", item.DataType)
		}
	}

	if plan.ManifestExists {
		t.Fatal("manifest should not exist yet")
	}
	if len(plan.Manifest.Files) != 2 || len(plan.Manifest.DataFiles) != 1 || len(plan.Manifest.Unclassified) != 1 {
		t.Fatalf("unexpected manifest delta %+v", plan.Manifest)
	}
	if plan.Sources[0].Image != filepath.Join(first, "preview.png") || plan.Sources[1].Image != "" {
		t.Fatalf("unexpected images %+v", plan.Sources)
	}
	if _, err := os.Stat(dest); !os.IsNotExist(err) {
		t.Fatalf("preview must not create the destination, stat err=%v", err)
	}
}

func TestBuildReplaceIgnoresExistingFiles(t *testing.T) {
	base := t.TempDir()
	src := filepath.Join(base, "pack")
	testsupport.WriteTree(t, src, map[string]string{"skin.ytd": ""})
	dest := filepath.Join(base, "my_pack")
	testsupport.WriteFile(t, filepath.Join(dest, "stream", "skin.ytd"), 1)

	req := builder.Request{Sources: []string{src}, Destination: dest, ResourceName: "my_pack", Mode: config.ModeMerge}
	merge, err := Build(req, fixedNow)
	if err != nil {
		t.Fatal(err)
	}
	if merge.Items[0].Placement.Step != packer.StepPrefixed {
		t.Fatalf("merge should see the existing file, got %s", merge.Items[0].Placement.Step)
	}

	req.Mode = config.ModeReplace
	replace, err := Build(req, fixedNow)
	if err != nil {
		t.Fatal(err)
	}
	if replace.Items[0].Placement.Step != packer.StepOriginal {
		t.Fatalf("replace should ignore existing files, got %s", replace.Items[0].Placement.Step)
	}
}

func TestFindImage(t *testing.T) {
	dir := t.TempDir()
	if _, ok := FindImage(dir); ok {
		t.Fatal("empty folder has no image")
	}

	testsupport.WriteTree(t, dir, map[string]string{
		"a_render.jpg":          "",
		"screens/thumbnail.PNG": "",
	})
	got, ok := FindImage(dir)
	if !ok || got != filepath.Join(dir, "screens", "thumbnail.PNG") {
		t.Fatalf("FindImage = %q, %v", got, ok)
	}

	other := t.TempDir()
	testsupport.WriteTree(t, other, map[string]string{"b.webp": "", "nested/deeper/preview.png": ""})
	got, ok = FindImage(other)
	if !ok || got != filepath.Join(other, "b.webp") {
		t.Fatalf("FindImage = %q, %v", got, ok)
	}
}
