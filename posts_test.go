package main

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestGetPosts_Empty(t *testing.T) {
	db := setupTestDB(t)

	posts, err := getPosts(context.Background(), db)
	if err != nil {
		t.Fatalf("getPosts() error: %v", err)
	}

	if len(posts) != 0 {
		t.Errorf("expected 0 posts, got %d", len(posts))
	}
}

func TestCreatePost(t *testing.T) {
	db := setupTestDB(t)
	admin := mustCreateUser(t, db, "admin@example.com", "pw", "Admin")

	id, err := createPost(context.Background(), db, Post{
		AuthorID: admin.ID,
		Title:    "Test Title",
		Subtitle: "Test Subtitle",
		Date:     "March 07, 2026",
		Body:     "Test Content",
		ImgURL:   "https://example.com/a.jpg",
	})
	if err != nil {
		t.Fatalf("createPost() error: %v", err)
	}

	post, err := getPostByID(context.Background(), db, id)
	if err != nil {
		t.Fatalf("getPostByID() error: %v", err)
	}

	if post.Title != "Test Title" {
		t.Errorf("expected title 'Test Title', got '%s'", post.Title)
	}
	if post.Subtitle != "Test Subtitle" {
		t.Errorf("expected subtitle 'Test Subtitle', got '%s'", post.Subtitle)
	}
	if post.Body != "Test Content" {
		t.Errorf("expected body 'Test Content', got '%s'", post.Body)
	}
	if post.AuthorID != admin.ID || post.AuthorName != "Admin" {
		t.Errorf("expected author %d/Admin, got %d/%s", admin.ID, post.AuthorID, post.AuthorName)
	}
	if post.Date != "March 07, 2026" {
		t.Errorf("expected date 'March 07, 2026', got '%s'", post.Date)
	}
}

func TestCreatePost_DuplicateTitle(t *testing.T) {
	db := setupTestDB(t)
	admin := mustCreateUser(t, db, "admin@example.com", "pw", "Admin")
	mustCreatePost(t, db, admin.ID, "Same Title")

	_, err := createPost(context.Background(), db, Post{
		AuthorID: admin.ID,
		Title:    "Same Title",
		Subtitle: "other",
		Date:     "March 08, 2026",
		Body:     "other",
		ImgURL:   "https://example.com/b.jpg",
	})
	if !errors.Is(err, ErrDuplicateTitle) {
		t.Fatalf("expected ErrDuplicateTitle, got %v", err)
	}

	if n := countRows(t, db, "posts"); n != 1 {
		t.Errorf("expected 1 post, got %d", n)
	}
}

func TestGetPosts_InsertionOrder(t *testing.T) {
	db := setupTestDB(t)
	admin := mustCreateUser(t, db, "admin@example.com", "pw", "Admin")

	for _, title := range []string{"Zebra", "Apple", "Mango"} {
		mustCreatePost(t, db, admin.ID, title)
	}

	posts, err := getPosts(context.Background(), db)
	if err != nil {
		t.Fatalf("getPosts() error: %v", err)
	}

	want := []string{"Zebra", "Apple", "Mango"}
	if len(posts) != len(want) {
		t.Fatalf("expected %d posts, got %d", len(want), len(posts))
	}
	for i, title := range want {
		if posts[i].Title != title {
			t.Errorf("post %d: expected %q, got %q", i, title, posts[i].Title)
		}
	}
}

func TestGetPostByID_NotFound(t *testing.T) {
	db := setupTestDB(t)

	_, err := getPostByID(context.Background(), db, 999)
	if !errors.Is(err, ErrPostNotFound) {
		t.Errorf("expected ErrPostNotFound, got %v", err)
	}
}

func TestUpdatePost(t *testing.T) {
	db := setupTestDB(t)
	admin := mustCreateUser(t, db, "admin@example.com", "pw", "Admin")
	id := mustCreatePost(t, db, admin.ID, "Original")

	err := updatePost(context.Background(), db, id, "Updated", "New sub", "https://example.com/new.jpg", "New body")
	if err != nil {
		t.Fatalf("updatePost() error: %v", err)
	}

	post, err := getPostByID(context.Background(), db, id)
	if err != nil {
		t.Fatalf("getPostByID() error: %v", err)
	}

	if post.Title != "Updated" || post.Subtitle != "New sub" || post.Body != "New body" {
		t.Errorf("post not updated: %+v", post)
	}
	if post.ImgURL != "https://example.com/new.jpg" {
		t.Errorf("expected new image url, got %q", post.ImgURL)
	}
	if post.AuthorID != admin.ID {
		t.Errorf("author changed to %d", post.AuthorID)
	}
	if post.Date != "March 07, 2026" {
		t.Errorf("date changed to %q", post.Date)
	}
}

func TestUpdatePost_Errors(t *testing.T) {
	db := setupTestDB(t)
	admin := mustCreateUser(t, db, "admin@example.com", "pw", "Admin")
	mustCreatePost(t, db, admin.ID, "First")
	second := mustCreatePost(t, db, admin.ID, "Second")

	err := updatePost(context.Background(), db, second, "First", "s", "https://example.com/x.jpg", "b")
	if !errors.Is(err, ErrDuplicateTitle) {
		t.Errorf("expected ErrDuplicateTitle, got %v", err)
	}

	err = updatePost(context.Background(), db, 999, "Other", "s", "https://example.com/x.jpg", "b")
	if !errors.Is(err, ErrPostNotFound) {
		t.Errorf("expected ErrPostNotFound, got %v", err)
	}
}

func TestDeletePost_RemovesComments(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	admin := mustCreateUser(t, db, "admin@example.com", "pw", "Admin")
	reader := mustCreateUser(t, db, "reader@example.com", "pw", "Reader")
	doomed := mustCreatePost(t, db, admin.ID, "Doomed")
	kept := mustCreatePost(t, db, admin.ID, "Kept")

	for _, postID := range []int64{doomed, doomed, kept} {
		if _, err := createComment(ctx, db, postID, reader.ID, "hello"); err != nil {
			t.Fatalf("createComment() error: %v", err)
		}
	}

	if err := deletePost(ctx, db, doomed); err != nil {
		t.Fatalf("deletePost() error: %v", err)
	}

	if _, err := getPostByID(ctx, db, doomed); !errors.Is(err, ErrPostNotFound) {
		t.Errorf("expected deleted post to be gone, got %v", err)
	}
	if n := countRows(t, db, "comments"); n != 1 {
		t.Errorf("expected 1 remaining comment, got %d", n)
	}
}

func TestDeletePost_NotFound(t *testing.T) {
	db := setupTestDB(t)

	if err := deletePost(context.Background(), db, 999); !errors.Is(err, ErrPostNotFound) {
		t.Errorf("expected ErrPostNotFound, got %v", err)
	}
}

func TestFormatPostDate(t *testing.T) {
	got := formatPostDate(time.Date(2026, time.March, 7, 15, 4, 0, 0, time.UTC))
	if got != "March 07, 2026" {
		t.Errorf("expected 'March 07, 2026', got %q", got)
	}
}
