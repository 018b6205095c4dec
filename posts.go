package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// postDateLayout renders dates like "March 07, 2026".
const postDateLayout = "January 02, 2006"

var (
	ErrPostNotFound   = errors.New("post not found")
	ErrDuplicateTitle = errors.New("a post with this title already exists")
)

const selectPost = `
	SELECT p.id, p.author_id, u.name, p.title, p.subtitle, p.date, p.body, p.img_url
	FROM posts p
	JOIN users u ON u.id = p.author_id`

func formatPostDate(t time.Time) string {
	return t.Format(postDateLayout)
}

// getPosts returns every post in insertion order.
func getPosts(ctx context.Context, db *sql.DB) ([]Post, error) {
	rows, err := db.QueryContext(ctx, selectPost+" ORDER BY p.id ASC")
	if err != nil {
		return nil, fmt.Errorf("querying posts: %w", err)
	}
	defer rows.Close()

	var posts []Post
	for rows.Next() {
		var post Post
		err := rows.Scan(&post.ID, &post.AuthorID, &post.AuthorName, &post.Title,
			&post.Subtitle, &post.Date, &post.Body, &post.ImgURL)
		if err != nil {
			return nil, fmt.Errorf("scanning post: %w", err)
		}
		posts = append(posts, post)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating posts: %w", err)
	}

	return posts, nil
}

func getPostByID(ctx context.Context, db *sql.DB, id int64) (*Post, error) {
	row := db.QueryRowContext(ctx, selectPost+" WHERE p.id = ?", id)

	var post Post
	err := row.Scan(&post.ID, &post.AuthorID, &post.AuthorName, &post.Title,
		&post.Subtitle, &post.Date, &post.Body, &post.ImgURL)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPostNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scanning post: %w", err)
	}

	return &post, nil
}

// createPost stores p owned by p.AuthorID. p.Date must already be formatted.
func createPost(ctx context.Context, db *sql.DB, p Post) (int64, error) {
	result, err := db.ExecContext(ctx, `
		INSERT INTO posts (author_id, title, subtitle, date, body, img_url)
		VALUES (?, ?, ?, ?, ?, ?)`,
		p.AuthorID, p.Title, p.Subtitle, p.Date, p.Body, p.ImgURL)
	if isUniqueViolation(err) {
		return 0, ErrDuplicateTitle
	}
	if err != nil {
		return 0, fmt.Errorf("inserting post: %w", err)
	}

	return result.LastInsertId()
}

// updatePost overwrites the editable fields only. Author and date stay as
// they were when the post was created.
func updatePost(ctx context.Context, db *sql.DB, id int64, title, subtitle, imgURL, body string) error {
	result, err := db.ExecContext(ctx, `
		UPDATE posts
		SET title = ?, subtitle = ?, img_url = ?, body = ?
		WHERE id = ?`, title, subtitle, imgURL, body, id)
	if isUniqueViolation(err) {
		return ErrDuplicateTitle
	}
	if err != nil {
		return fmt.Errorf("updating post: %w", err)
	}

	return requireAffected(result, ErrPostNotFound)
}

// deletePost removes a post. Its comments go with it (ON DELETE CASCADE).
func deletePost(ctx context.Context, db *sql.DB, id int64) error {
	result, err := db.ExecContext(ctx, "DELETE FROM posts WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting post: %w", err)
	}

	return requireAffected(result, ErrPostNotFound)
}

func requireAffected(result sql.Result, notFound error) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("reading affected rows: %w", err)
	}
	if n == 0 {
		return notFound
	}
	return nil
}
