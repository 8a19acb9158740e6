package address

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"

	"github.com/TheVish04/ecommerce2-sub001/internal/apperr"
)

type memRepo struct {
	rows   map[int]Address
	nextID int
}

func newMemRepo() *memRepo {
	return &memRepo{rows: map[int]Address{}}
}

func (r *memRepo) ListByUser(userID int) ([]Address, error) {
	out := []Address{}
	for _, a := range r.rows {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *memRepo) GetByID(userID, id int) (Address, error) {
	a, ok := r.rows[id]
	if !ok || a.UserID != userID {
		return Address{}, fmt.Errorf("address %d: %w", id, apperr.ErrNotFound)
	}
	return a, nil
}

func (r *memRepo) Create(a Address) (Address, error) {
	r.nextID++
	a.ID = r.nextID
	a.CreatedAt = time.Now().UTC()
	a.UpdatedAt = a.CreatedAt
	r.rows[a.ID] = a
	return a, nil
}

func (r *memRepo) Update(a Address) (Address, error) {
	stored, ok := r.rows[a.ID]
	if !ok || stored.UserID != a.UserID {
		return Address{}, fmt.Errorf("address %d: %w", a.ID, apperr.ErrNotFound)
	}
	stored.Label, stored.Line, stored.Phone = a.Label, a.Line, a.Phone
	stored.UpdatedAt = time.Now().UTC()
	r.rows[a.ID] = stored
	return stored, nil
}

func (r *memRepo) Delete(userID, id int) error {
	a, ok := r.rows[id]
	if !ok || a.UserID != userID {
		return fmt.Errorf("address %d: %w", id, apperr.ErrNotFound)
	}
	delete(r.rows, id)
	return nil
}

func newTestApp(repo Repository, userID int) *fiber.App {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("user", &jwt.Token{Claims: jwt.MapClaims{
			"user_id": float64(userID),
			"role":    "customer",
		}})
		return c.Next()
	})
	NewHandler(NewService(repo)).RegisterProtectedRoutes(app)
	return app
}

func TestHandler_CreateAndList(t *testing.T) {
	repo := newMemRepo()
	app := newTestApp(repo, 1)

	body, _ := json.Marshal(addressRequest{Label: "home", Line: "42 Some Street, Pune", Phone: "9999999999"})
	req := httptest.NewRequest("POST", "/api/v1/addresses", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusCreated {
		t.Fatalf("status = %d, want 201", resp.StatusCode)
	}

	resp, err = app.Test(httptest.NewRequest("GET", "/api/v1/addresses", nil))
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	var addrs []Address
	if err := json.NewDecoder(resp.Body).Decode(&addrs); err != nil {
		t.Fatalf("bad list body: %v", err)
	}
	if len(addrs) != 1 || addrs[0].Line != "42 Some Street, Pune" {
		t.Errorf("unexpected list: %+v", addrs)
	}
}

func TestHandler_Create_MissingLine(t *testing.T) {
	app := newTestApp(newMemRepo(), 1)

	req := httptest.NewRequest("POST", "/api/v1/addresses", bytes.NewReader([]byte(`{"label":"home"}`)))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestHandler_Delete_ForeignAddress(t *testing.T) {
	repo := newMemRepo()
	if _, err := repo.Create(Address{UserID: 2, Line: "someone else's"}); err != nil {
		t.Fatal(err)
	}
	app := newTestApp(repo, 1)

	resp, err := app.Test(httptest.NewRequest("DELETE", "/api/v1/addresses/1", nil))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
	if len(repo.rows) != 1 {
		t.Errorf("foreign address must not be deleted")
	}
}

func TestResolve(t *testing.T) {
	repo := newMemRepo()
	svc := NewService(repo)

	created, err := svc.Create(1, "home", "42 Some Street, Pune", "9999999999")
	if err != nil {
		t.Fatal(err)
	}

	line, err := svc.Resolve(1, created.ID)
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if line != "42 Some Street, Pune (9999999999)" {
		t.Errorf("rendered line = %q", line)
	}

	if _, err := svc.Resolve(2, created.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for another user, got %v", err)
	}
}
