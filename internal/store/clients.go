package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"billing/pkg/models"
	"github.com/google/uuid"
)

// CreateClient inserts a client. A new id is assigned and CreatedAt defaults
// to the current time. Projects on the input are ignored.
func (s *Store) CreateClient(ctx context.Context, c models.Client) (*models.Client, error) {
	const op = "CreateClient"

	c.Name = strings.TrimSpace(c.Name)
	if c.Name == "" {
		return nil, wrap(op, ErrInvalidInput, "client name is required")
	}
	c.ID = uuid.NewString()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now()
	}
	c.CreatedAt = fromMillis(toMillis(c.CreatedAt))
	c.Projects = []models.Project{}

	_, err := s.sqlDB.ExecContext(ctx,
		`INSERT INTO clients (id, name, email, phone, created_at) VALUES (?, ?, ?, ?, ?)`,
		c.ID, c.Name, strings.TrimSpace(c.Email), strings.TrimSpace(c.Phone), toMillis(c.CreatedAt),
	)
	if err != nil {
		return nil, wrap(op, err, "insert client")
	}
	return &c, nil
}

// UpdateClient overwrites name, email and phone of an existing client.
func (s *Store) UpdateClient(ctx context.Context, c models.Client) error {
	const op = "UpdateClient"

	if strings.TrimSpace(c.Name) == "" {
		return wrap(op, ErrInvalidInput, "client name is required")
	}
	res, err := s.sqlDB.ExecContext(ctx,
		`UPDATE clients SET name = ?, email = ?, phone = ? WHERE id = ?`,
		strings.TrimSpace(c.Name), strings.TrimSpace(c.Email), strings.TrimSpace(c.Phone), c.ID,
	)
	if err != nil {
		return wrap(op, err, "update client")
	}
	return requireAffected(op, res, c.ID)
}

// DeleteClient removes a client and its projects. Invoices of the client
// survive with no client attached.
func (s *Store) DeleteClient(ctx context.Context, id string) error {
	const op = "DeleteClient"

	res, err := s.sqlDB.ExecContext(ctx, `DELETE FROM clients WHERE id = ?`, id)
	if err != nil {
		return wrap(op, err, "delete client")
	}
	return requireAffected(op, res, id)
}

// GetClient returns one client with its projects.
func (s *Store) GetClient(ctx context.Context, id string) (*models.Client, error) {
	const op = "GetClient"

	row := s.sqlDB.QueryRowContext(ctx,
		`SELECT id, name, email, phone, created_at FROM clients WHERE id = ?`, id)
	c, err := scanClient(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, wrap(op, ErrNotFound, "client "+id)
	}
	if err != nil {
		return nil, wrap(op, err, "scan client")
	}

	projects, err := s.projectsByClient(ctx, `WHERE client_id = ?`, id)
	if err != nil {
		return nil, wrap(op, err, "load projects")
	}
	c.Projects = projects[c.ID]
	if c.Projects == nil {
		c.Projects = []models.Project{}
	}
	return &c, nil
}

// ListClients returns every client with projects, newest first.
func (s *Store) ListClients(ctx context.Context) ([]models.Client, error) {
	return s.listClients(ctx, "ListClients", ``)
}

// ListClientsCreatedBetween returns clients whose CreatedAt lies in
// [start, end], newest first.
func (s *Store) ListClientsCreatedBetween(ctx context.Context, start, end time.Time) ([]models.Client, error) {
	return s.listClients(ctx, "ListClientsCreatedBetween",
		`WHERE created_at >= ? AND created_at <= ?`, toMillis(start), toMillis(end))
}

func (s *Store) listClients(ctx context.Context, op, where string, args ...any) ([]models.Client, error) {
	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT id, name, email, phone, created_at FROM clients `+where+` ORDER BY created_at DESC, id`, args...)
	if err != nil {
		return nil, wrap(op, err, "query clients")
	}
	defer rows.Close()

	clients := []models.Client{}
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, wrap(op, err, "scan client")
		}
		clients = append(clients, c)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap(op, err, "iterate clients")
	}

	projects, err := s.projectsByClient(ctx, ``)
	if err != nil {
		return nil, wrap(op, err, "load projects")
	}
	for i := range clients {
		clients[i].Projects = projects[clients[i].ID]
		if clients[i].Projects == nil {
			clients[i].Projects = []models.Project{}
		}
	}
	return clients, nil
}

// AddProject attaches a project to an existing client.
func (s *Store) AddProject(ctx context.Context, p models.Project) (*models.Project, error) {
	const op = "AddProject"

	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		return nil, wrap(op, ErrInvalidInput, "project name is required")
	}
	p.ID = uuid.NewString()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now()
	}
	p.CreatedAt = fromMillis(toMillis(p.CreatedAt))

	_, err := s.sqlDB.ExecContext(ctx,
		`INSERT INTO projects (id, client_id, name, description, created_at) VALUES (?, ?, ?, ?, ?)`,
		p.ID, p.ClientID, p.Name, strings.TrimSpace(p.Description), toMillis(p.CreatedAt),
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, wrap(op, ErrNotFound, "client "+p.ClientID)
		}
		return nil, wrap(op, err, "insert project")
	}
	return &p, nil
}

func (s *Store) projectsByClient(ctx context.Context, where string, args ...any) (map[string][]models.Project, error) {
	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT id, client_id, name, description, created_at FROM projects `+where+` ORDER BY created_at, id`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string][]models.Project)
	for rows.Next() {
		var p models.Project
		var createdAt int64
		if err := rows.Scan(&p.ID, &p.ClientID, &p.Name, &p.Description, &createdAt); err != nil {
			return nil, err
		}
		p.CreatedAt = fromMillis(createdAt)
		out[p.ClientID] = append(out[p.ClientID], p)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanClient(row rowScanner) (models.Client, error) {
	var c models.Client
	var createdAt int64
	if err := row.Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &createdAt); err != nil {
		return models.Client{}, err
	}
	c.CreatedAt = fromMillis(createdAt)
	return c, nil
}

func requireAffected(op string, res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return wrap(op, err, "rows affected")
	}
	if n == 0 {
		return wrap(op, ErrNotFound, id)
	}
	return nil
}
