package main

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

func createComment(ctx context.Context, db *sql.DB, postID, authorID int64, text string) (int64, error) {
	result, err := db.ExecContext(ctx, `
		INSERT INTO comments (text, author_id, post_id)
		VALUES (?, ?, ?)`, text, authorID, postID)
	if err != nil {
		if strings.Contains(err.Error(), "FOREIGN KEY constraint failed") {
			return 0, ErrPostNotFound
		}
		return 0, fmt.Errorf("inserting comment: %w", err)
	}

	return result.LastInsertId()
}

// getCommentsByPost returns a post's comments, oldest first, with the
// author's name and email filled in.
func getCommentsByPost(ctx context.Context, db *sql.DB, postID int64) ([]Comment, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT c.id, c.text, c.author_id, u.name, u.email, c.post_id, c.created_at
		FROM comments c
		JOIN users u ON u.id = c.author_id
		WHERE c.post_id = ?
		ORDER BY c.id ASC`, postID)
	if err != nil {
		return nil, fmt.Errorf("querying comments: %w", err)
	}
	defer rows.Close()

	var comments []Comment
	for rows.Next() {
		var c Comment
		err := rows.Scan(&c.ID, &c.Text, &c.AuthorID, &c.AuthorName, &c.AuthorEmail, &c.PostID, &c.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("scanning comment: %w", err)
		}
		comments = append(comments, c)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating comments: %w", err)
	}

	return comments, nil
}
