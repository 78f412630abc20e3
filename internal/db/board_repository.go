package db

import (
	"database/sql"
	"fmt"

	"github.com/cafehub/coffeeshop-go/internal/models"
)

const postsPerPage = 10

type BoardRepository struct {
	db *sql.DB
}

func NewBoardRepository(database *PostgresDB) *BoardRepository {
	return &BoardRepository{db: database.Conn}
}

// GetPosts returns one page of posts, newest first. Pages start at 0.
func (r *BoardRepository) GetPosts(page int) ([]models.Post, error) {
	if page < 0 {
		page = 0
	}

	query := `
		SELECT id, title, content, author, created_at, updated_at
		FROM posts ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`

	rows, err := r.db.Query(query, postsPerPage, page*postsPerPage)
	if err != nil {
		return nil, fmt.Errorf("failed to query posts: %w", err)
	}
	defer rows.Close()

	var posts []models.Post
	for rows.Next() {
		var p models.Post
		err := rows.Scan(&p.ID, &p.Title, &p.Content, &p.Author, &p.CreatedAt, &p.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan post: %w", err)
		}
		posts = append(posts, p)
	}

	return posts, rows.Err()
}

func (r *BoardRepository) GetPostByID(id int) (*models.Post, error) {
	query := `SELECT id, title, content, author, created_at, updated_at FROM posts WHERE id = $1`

	var p models.Post
	err := r.db.QueryRow(query, id).
		Scan(&p.ID, &p.Title, &p.Content, &p.Author, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get post: %w", err)
	}

	return &p, nil
}

func (r *BoardRepository) CreatePost(req models.CreatePostRequest) (*models.Post, error) {
	query := `
		INSERT INTO posts (title, content, author)
		VALUES ($1, $2, $3)
		RETURNING id, title, content, author, created_at, updated_at
	`

	var p models.Post
	err := r.db.QueryRow(query, req.Title, req.Content, req.Author).
		Scan(&p.ID, &p.Title, &p.Content, &p.Author, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create post: %w", err)
	}

	return &p, nil
}

func (r *BoardRepository) UpdatePost(id int, req models.CreatePostRequest) (*models.Post, error) {
	query := `
		UPDATE posts SET title = $1, content = $2, updated_at = now()
		WHERE id = $3
		RETURNING id, title, content, author, created_at, updated_at
	`

	var p models.Post
	err := r.db.QueryRow(query, req.Title, req.Content, id).
		Scan(&p.ID, &p.Title, &p.Content, &p.Author, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to update post: %w", err)
	}

	return &p, nil
}

func (r *BoardRepository) DeletePost(id int) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM comments WHERE post_id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete comments: %w", err)
	}

	result, err := tx.Exec(`DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete post: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("post not found")
	}

	return tx.Commit()
}

// GetComments returns all comments on a post, newest first
func (r *BoardRepository) GetComments(postID int) ([]models.Comment, error) {
	query := `
		SELECT id, post_id, content, author, created_at, updated_at
		FROM comments WHERE post_id = $1 ORDER BY created_at DESC
	`

	rows, err := r.db.Query(query, postID)
	if err != nil {
		return nil, fmt.Errorf("failed to query comments: %w", err)
	}
	defer rows.Close()

	var comments []models.Comment
	for rows.Next() {
		var c models.Comment
		err := rows.Scan(&c.ID, &c.PostID, &c.Content, &c.Author, &c.CreatedAt, &c.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan comment: %w", err)
		}
		comments = append(comments, c)
	}

	return comments, rows.Err()
}

func (r *BoardRepository) CreateComment(postID int, req models.CreateCommentRequest) (*models.Comment, error) {
	query := `
		INSERT INTO comments (post_id, content, author)
		VALUES ($1, $2, $3)
		RETURNING id, post_id, content, author, created_at, updated_at
	`

	var c models.Comment
	err := r.db.QueryRow(query, postID, req.Content, req.Author).
		Scan(&c.ID, &c.PostID, &c.Content, &c.Author, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create comment: %w", err)
	}

	return &c, nil
}

func (r *BoardRepository) UpdateComment(id int, req models.CreateCommentRequest) (*models.Comment, error) {
	query := `
		UPDATE comments SET content = $1, updated_at = now()
		WHERE id = $2
		RETURNING id, post_id, content, author, created_at, updated_at
	`

	var c models.Comment
	err := r.db.QueryRow(query, req.Content, id).
		Scan(&c.ID, &c.PostID, &c.Content, &c.Author, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to update comment: %w", err)
	}

	return &c, nil
}

func (r *BoardRepository) DeleteComment(id int) error {
	result, err := r.db.Exec(`DELETE FROM comments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete comment: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("comment not found")
	}

	return nil
}
