// Package authz decides which roles may call which routes.
package authz

import (
	"fmt"
	"strings"

	"github.com/Skotchmaster/ecom/internal/models"
	"github.com/casbin/casbin/v3"
	"github.com/casbin/casbin/v3/model"
	"github.com/casbin/casbin/v3/util"
	gormadapter "github.com/casbin/gorm-adapter/v3"
	"gorm.io/gorm"
)

const casbinTableName = "casbin_rule"

const rbacModel = `
[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[role_definition]
g = _, _

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = (g(r.sub, p.sub) || r.sub == p.sub) && keyMatch2(r.obj, p.obj) && (r.act == p.act || p.act == "*")
`

type Policy struct {
	Role   string
	Object string
	Action string
}

// DefaultPolicies are seeded at startup: catalog writes are admin-only.
func DefaultPolicies() []Policy {
	return []Policy{
		{Role: models.RoleAdmin, Object: "/api/v1/products", Action: "POST"},
		{Role: models.RoleAdmin, Object: "/api/v1/products/:id", Action: "PUT"},
		{Role: models.RoleAdmin, Object: "/api/v1/products/:id", Action: "DELETE"},
	}
}

type Enforcer struct {
	enforcer *casbin.SyncedEnforcer
}

// New loads the model and any persisted policies from the casbin_rule table.
func New(db *gorm.DB) (*Enforcer, error) {
	if db == nil {
		return nil, fmt.Errorf("authz db is nil")
	}

	adapter, err := gormadapter.NewAdapterByDBUseTableName(db, "", casbinTableName)
	if err != nil {
		return nil, fmt.Errorf("create authz adapter: %w", err)
	}

	m, err := model.NewModelFromString(rbacModel)
	if err != nil {
		return nil, fmt.Errorf("load authz model: %w", err)
	}

	enforcer, err := casbin.NewSyncedEnforcer(m, adapter)
	if err != nil {
		return nil, fmt.Errorf("init authz enforcer: %w", err)
	}
	enforcer.AddFunction("keyMatch2", util.KeyMatch2Func)
	enforcer.EnableAutoSave(true)

	if err := enforcer.LoadPolicy(); err != nil {
		return nil, fmt.Errorf("load authz policy: %w", err)
	}
	return &Enforcer{enforcer: enforcer}, nil
}

// Seed adds the given policies; ones already stored are left alone.
func (e *Enforcer) Seed(policies []Policy) error {
	for _, p := range policies {
		if _, err := e.enforcer.AddPolicy(p.Role, p.Object, normalizeAction(p.Action)); err != nil {
			return fmt.Errorf("seed policy %s %s %s: %w", p.Role, p.Action, p.Object, err)
		}
	}
	return nil
}

// Allow reports whether role may perform method on the request path.
func (e *Enforcer) Allow(role, path, method string) (bool, error) {
	if e == nil || e.enforcer == nil {
		return false, fmt.Errorf("authz enforcer unavailable")
	}
	return e.enforcer.Enforce(strings.TrimSpace(role), normalizeObject(path), normalizeAction(method))
}

func normalizeObject(path string) string {
	path = strings.TrimSpace(path)
	if path == "" {
		return "/"
	}
	if len(path) > 1 {
		path = strings.TrimRight(path, "/")
	}
	return path
}

func normalizeAction(method string) string {
	method = strings.ToUpper(strings.TrimSpace(method))
	if method == "" {
		return "*"
	}
	return method
}
