package handler_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"peopledesk/internal/company"
	"peopledesk/internal/handler"
	"peopledesk/internal/model"
	"peopledesk/internal/tenant"
	"peopledesk/pkg/jwtutil"
)

type env struct {
	e       *echo.Echo
	central *gorm.DB
	handler *handler.EmployeeHandler
}

func setupEnv(t *testing.T) *env {
	central, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, central.AutoMigrate(&model.Company{}))
	require.NoError(t, central.Create(&model.Company{ID: "acme", Name: "Acme", Active: true}).Error)

	ns := t.Name()
	tenants := tenant.NewResolver(tenant.Options{
		Open: func(tenantID string) (gorm.Dialector, error) {
			dsn := fmt.Sprintf("file:%s_%s?mode=memory&cache=shared", ns, tenantID)
			return sqlite.Open(dsn), nil
		},
	})
	t.Cleanup(tenants.Close)

	counts := company.NewCountService(central, tenants, nil)
	return &env{
		e:       echo.New(),
		central: central,
		handler: handler.NewEmployeeHandler(tenants, counts),
	}
}

// request builds an echo context carrying authenticated claims for tenant
// "acme", the way the auth middleware would.
func (v *env) request(method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	c := v.e.NewContext(req, rec)
	c.Set("user", &jwtutil.UserClaims{ActorID: "hr-1", CompanyID: "acme"})
	return c, rec
}

func (v *env) userCount(t *testing.T) int {
	var record model.Company
	require.NoError(t, v.central.Where("id = ?", "acme").First(&record).Error)
	return record.UserCount
}

func TestCreateEmployeeIncrementsUserCount(t *testing.T) {
	v := setupEnv(t)

	c, rec := v.request(http.MethodPost, "/api/employees",
		`{"employee_code":"E-1","first_name":"Ada","status":"Active"}`)
	require.NoError(t, v.handler.Create(c))
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, 1, v.userCount(t))

	// Inactive hires do not move the counter
	c, rec = v.request(http.MethodPost, "/api/employees",
		`{"employee_code":"E-2","first_name":"Bob","status":"Inactive"}`)
	require.NoError(t, v.handler.Create(c))
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, 1, v.userCount(t))
}

func TestDeleteAndRestoreEmployee(t *testing.T) {
	v := setupEnv(t)

	c, rec := v.request(http.MethodPost, "/api/employees",
		`{"employee_code":"E-1","first_name":"Ada","status":"Active"}`)
	require.NoError(t, v.handler.Create(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	var created struct {
		Employee model.Employee `json:"employee"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	id := fmt.Sprintf("%d", created.Employee.ID)

	// Soft delete decrements the counter
	c, rec = v.request(http.MethodDelete, "/api/employees/"+id, "")
	c.SetParamNames("id")
	c.SetParamValues(id)
	require.NoError(t, v.handler.Delete(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 0, v.userCount(t))

	// The deleted employee is gone from the default list
	c, rec = v.request(http.MethodGet, "/api/employees", "")
	require.NoError(t, v.handler.List(c))
	var listed struct {
		Employees []model.Employee `json:"employees"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listed))
	assert.Empty(t, listed.Employees)

	// ...but shows up in the deleted listing with the acting user stamped
	c, rec = v.request(http.MethodGet, "/api/employees/deleted", "")
	require.NoError(t, v.handler.ListDeleted(c))
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listed))
	require.Len(t, listed.Employees, 1)
	require.NotNil(t, listed.Employees[0].DeletedBy)
	assert.Equal(t, "hr-1", *listed.Employees[0].DeletedBy)

	// Restore brings it back and re-increments
	c, rec = v.request(http.MethodPost, "/api/employees/"+id+"/restore", "")
	c.SetParamNames("id")
	c.SetParamValues(id)
	require.NoError(t, v.handler.Restore(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, v.userCount(t))
}

func TestGetUnknownEmployee(t *testing.T) {
	v := setupEnv(t)

	c, rec := v.request(http.MethodGet, "/api/employees/999", "")
	c.SetParamNames("id")
	c.SetParamValues("999")
	require.NoError(t, v.handler.Get(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
