// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"blogify/internal/config"
	"blogify/internal/models"
)

func TestBuildTree(t *testing.T) {
	root := uuid.New()
	child := uuid.New()
	flat := []models.Category{
		{ID: root, Name: "Root"},
		{ID: child, Name: "Child", ParentID: &root},
		{ID: uuid.New(), Name: "Grandchild", ParentID: &child},
		{ID: uuid.New(), Name: "Other root"},
	}

	tree := buildTree(flat, nil, 0)
	if len(tree) != 2 {
		t.Fatalf("roots = %d, want 2", len(tree))
	}
	if len(tree[0].Children) != 1 || tree[0].Children[0].Depth != 1 {
		t.Fatalf("child not nested: %+v", tree[0])
	}
	gc := tree[0].Children[0].Children
	if len(gc) != 1 || gc[0].Name != "Grandchild" || gc[0].Depth != 2 {
		t.Errorf("grandchild = %+v", gc)
	}
}

func TestPtrEqual(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	a2 := a
	tests := []struct {
		x, y *uuid.UUID
		want bool
	}{
		{nil, nil, true},
		{&a, nil, false},
		{nil, &a, false},
		{&a, &a2, true},
		{&a, &b, false},
	}
	for _, tt := range tests {
		if got := ptrEqual(tt.x, tt.y); got != tt.want {
			t.Errorf("ptrEqual(%v, %v) = %v", tt.x, tt.y, got)
		}
	}
}

// TestCategoryStorePostCountIsFresh checks that post_count counts drafts
// too and drops as soon as a post is deleted.
func TestCategoryStorePostCountIsFresh(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	s := NewCategoryStore(db)

	cat := mustCategory(t, db, "Counted", nil)
	terms := TermIDs{Categories: []uuid.UUID{cat.ID}}
	mustPost(t, db, models.Post{Published: true}, terms)
	mustPost(t, db, models.Post{Published: false}, terms)
	third := mustPost(t, db, models.Post{Published: true}, terms)

	got, err := s.FindBySlug(ctx, cat.Slug)
	if err != nil || got == nil {
		t.Fatalf("FindBySlug = %v, %v", got, err)
	}
	if got.PostCount != 3 {
		t.Errorf("post_count = %d, want 3", got.PostCount)
	}

	if _, err := NewPostStore(db).Delete(ctx, third.ID); err != nil {
		t.Fatalf("delete post: %v", err)
	}
	got, _ = s.FindBySlug(ctx, cat.Slug)
	if got.PostCount != 2 {
		t.Errorf("post_count after delete = %d, want 2", got.PostCount)
	}
}

func TestCategoryStoreListOrdering(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	s := NewCategoryStore(db)

	busy := mustCategory(t, db, "Busy", nil)
	for i := 0; i < 3; i++ {
		mustPost(t, db, models.Post{}, TermIDs{Categories: []uuid.UUID{busy.ID}})
	}

	items, total, err := s.List(ctx, 1000, 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if total < 1 || len(items) == 0 {
		t.Fatalf("List returned nothing (total %d)", total)
	}
	for i := 1; i < len(items); i++ {
		if items[i].PostCount > items[i-1].PostCount {
			t.Fatalf("not ordered by post_count desc at %d: %d > %d",
				i, items[i].PostCount, items[i-1].PostCount)
		}
	}
	var found bool
	for _, c := range items {
		if c.ID == busy.ID {
			found = c.PostCount == 3
		}
	}
	if !found {
		t.Error("busy category missing or miscounted")
	}
}

func TestCategoryStoreDuplicateSlug(t *testing.T) {
	db := testDB(t)
	c := mustCategory(t, db, "One", nil)

	_, err := NewCategoryStore(db).Create(context.Background(), &models.Category{Name: "Two", Slug: c.Slug})
	if !errors.Is(err, ErrSlugTaken) {
		t.Errorf("err = %v, want ErrSlugTaken", err)
	}
}

func TestCategoryStoreCycleRejected(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	s := NewCategoryStore(db)

	a := mustCategory(t, db, "A", nil)
	b := mustCategory(t, db, "B", &a.ID)
	c := mustCategory(t, db, "C", &b.ID)

	tests := []struct {
		name   string
		target *models.Category
		parent uuid.UUID
	}{
		{"self", a, a.ID},
		{"child", a, b.ID},
		{"grandchild", a, c.ID},
		{"middle to own child", b, c.ID},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			upd := *tt.target
			upd.ParentID = &tt.parent
			if _, err := s.Update(ctx, &upd); !errors.Is(err, ErrCategoryCycle) {
				t.Errorf("err = %v, want ErrCategoryCycle", err)
			}
		})
	}

	// Moving the leaf directly under the root is legal.
	upd := *c
	upd.ParentID = &a.ID
	moved, err := s.Update(ctx, &upd)
	if err != nil {
		t.Fatalf("legal re-parent: %v", err)
	}
	if moved.ParentID == nil || *moved.ParentID != a.ID {
		t.Errorf("parent = %v, want %s", moved.ParentID, a.ID)
	}
}

func TestCategoryStoreTree(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	root := mustCategory(t, db, "Tree root", nil)
	child := mustCategory(t, db, "Tree child", &root.ID)

	tree, err := NewCategoryStore(db).Tree(ctx)
	if err != nil {
		t.Fatalf("Tree: %v", err)
	}
	for _, c := range tree {
		if c.ID == child.ID {
			t.Error("child listed at root level")
		}
		if c.ID == root.ID {
			if len(c.Children) != 1 || c.Children[0].ID != child.ID {
				t.Errorf("root children = %+v", c.Children)
			}
			return
		}
	}
	t.Error("root category not found in tree")
}

func TestCategoryStoreDeletePolicies(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	s := NewCategoryStore(db)
	posts := NewPostStore(db)

	// setup builds parent -> child with one post on the child.
	setup := func(t *testing.T) (*models.Category, *models.Category, *models.Post) {
		parent := mustCategory(t, db, "Parent", nil)
		child := mustCategory(t, db, "Child", &parent.ID)
		p := mustPost(t, db, models.Post{}, TermIDs{Categories: []uuid.UUID{child.ID}})
		return parent, child, p
	}

	t.Run("detach", func(t *testing.T) {
		parent, child, p := setup(t)
		ok, err := s.Delete(ctx, parent.ID, config.DeleteDetach)
		if err != nil || !ok {
			t.Fatalf("Delete = %v, %v", ok, err)
		}
		if c, _ := s.FindByID(ctx, child.ID); c != nil {
			t.Error("child category survived its parent")
		}
		got, _ := posts.FindByID(ctx, p.ID)
		if got == nil {
			t.Fatal("detach deleted the post")
		}
		if len(got.Categories) != 0 {
			t.Errorf("post still attached: %+v", got.Categories)
		}
	})

	t.Run("restrict", func(t *testing.T) {
		parent, child, p := setup(t)
		_, err := s.Delete(ctx, parent.ID, config.DeleteRestrict)
		if !errors.Is(err, ErrCategoryInUse) {
			t.Fatalf("err = %v, want ErrCategoryInUse", err)
		}
		if c, _ := s.FindByID(ctx, child.ID); c == nil {
			t.Error("restrict removed the child")
		}
		if got, _ := posts.FindByID(ctx, p.ID); got == nil || len(got.Categories) != 1 {
			t.Error("restrict touched the post")
		}

		empty := mustCategory(t, db, "Empty", nil)
		if ok, err := s.Delete(ctx, empty.ID, config.DeleteRestrict); err != nil || !ok {
			t.Errorf("restrict on empty category = %v, %v", ok, err)
		}
	})

	t.Run("cascade", func(t *testing.T) {
		parent, _, p := setup(t)
		ok, err := s.Delete(ctx, parent.ID, config.DeleteCascade)
		if err != nil || !ok {
			t.Fatalf("Delete = %v, %v", ok, err)
		}
		if got, _ := posts.FindByID(ctx, p.ID); got != nil {
			t.Error("cascade kept the post")
		}
	})

	t.Run("missing", func(t *testing.T) {
		ok, err := s.Delete(ctx, uuid.New(), config.DeleteDetach)
		if err != nil || ok {
			t.Errorf("Delete(missing) = %v, %v", ok, err)
		}
	})
}
