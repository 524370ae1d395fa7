package api

import (
	"bytes"
	"context"
	"encoding/json"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pedidos/m/domain"
	"pedidos/m/internal/config"
	"pedidos/m/internal/database"
	"pedidos/m/internal/migrations"
	"pedidos/m/internal/service"
)

const today = "2026-10-19"

type testAPI struct {
	router http.Handler
	svc    *service.Services
	db     *sqlx.DB
}

func setupAPI(t *testing.T) testAPI {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := database.Connect("file:" + name + "?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, migrations.Run(db))

	now := time.Date(2026, 10, 19, 9, 0, 0, 0, time.Local)
	svc := service.New(db, service.WithClock(func() time.Time { return now }))
	cfg := config.Config{
		Secret:         "test_secret",
		Zones:          []string{"Bernal", "Quilmes"},
		CORSOrigins:    []string{"*"},
		BusinessName:   "Distribuidora Test",
		RequestTimeout: 5 * time.Second,
	}
	return testAPI{router: New(svc, cfg).Router(), svc: svc, db: db}
}

func (a testAPI) do(t *testing.T, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func (a testAPI) seedProduct(t *testing.T, name string, cost, price float64, stock int64) {
	t.Helper()
	_, err := a.svc.Catalog.RegisterProduct(context.Background(), service.ProductInput{Name: name, Cost: cost, SalePrice: price, Stock: stock})
	require.NoError(t, err)
}

func (a testAPI) token(t *testing.T) string {
	t.Helper()
	return a.login(t).Token
}

func (a testAPI) login(t *testing.T) loginResponse {
	t.Helper()
	_, err := a.svc.Staff.EnsureUser(context.Background(), "admin@example.com", "pw", service.RoleAdmin)
	require.NoError(t, err)
	w := a.do(t, http.MethodPost, "/api/auth/login", `{"email":"admin@example.com","password":"pw"}`, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp loginResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	return resp
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestPingAndHealth(t *testing.T) {
	a := setupAPI(t)

	w := a.do(t, http.MethodGet, "/api/ping", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true}`, w.Body.String())

	w = a.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())

	w = a.do(t, http.MethodGet, "/api/zonas", "", nil)
	assert.Equal(t, []string{"Bernal", "Quilmes"}, decode[[]string](t, w))
}

func TestSearchEndpoints(t *testing.T) {
	a := setupAPI(t)
	for _, n := range []string{"Arroz", "Aceite", "Azucar", "Avena", "Ajo", "Anana"} {
		a.seedProduct(t, n, 1, 2, 3)
	}

	w := a.do(t, http.MethodGet, "/api/productos?buscar=", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]string](t, w), 5)

	w = a.do(t, http.MethodGet, "/api/productos?buscar=zuc", "", nil)
	assert.Equal(t, []string{"Azucar"}, decode[[]string](t, w))

	w = a.do(t, http.MethodGet, "/api/clientes?buscar=x", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "[]\n", w.Body.String())
}

func TestCostAndStockLookups(t *testing.T) {
	a := setupAPI(t)
	a.seedProduct(t, "Producto A", 100, 150, 10)

	w := a.do(t, http.MethodGet, "/api/productos/costo/Producto%20A", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"costo":100}`, w.Body.String())

	w = a.do(t, http.MethodGet, "/api/productos/stock/Producto%20A", "", nil)
	assert.JSONEq(t, `{"stock":10}`, w.Body.String())

	w = a.do(t, http.MethodGet, "/api/productos/stock/Nada", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"stock":0}`, w.Body.String())
}

func TestPlaceOrderScenario(t *testing.T) {
	a := setupAPI(t)
	a.seedProduct(t, "ProductoA", 100, 150, 10)

	w := a.do(t, http.MethodPost, "/api/pedidos", `{"cliente":"Juan","producto":"ProductoA","cantidad":3,"costo":150,"zona":"Bernal"}`, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	placed := decode[placeOrderResponse](t, w)
	assert.True(t, placed.Success)
	assert.NotEmpty(t, placed.Message)
	assert.Positive(t, placed.ID)

	w = a.do(t, http.MethodGet, "/api/productos/stock/ProductoA", "", nil)
	assert.JSONEq(t, `{"stock":7}`, w.Body.String())

	w = a.do(t, http.MethodGet, "/api/reportes/ventas?dias=1", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []domain.DailyTotal{{Date: today, Total: 450}}, decode[[]domain.DailyTotal](t, w))

	w = a.do(t, http.MethodGet, "/api/clientes?buscar=Ju", "", nil)
	assert.Equal(t, []string{"Juan"}, decode[[]string](t, w))

	w = a.do(t, http.MethodGet, "/api/pedidos/clientes", "", nil)
	assert.Equal(t, []string{"Juan"}, decode[[]string](t, w))

	w = a.do(t, http.MethodGet, "/api/pedidos/cliente/Juan?fecha="+today, "", nil)
	orders := decode[[]domain.Order](t, w)
	require.Len(t, orders, 1)
	assert.Equal(t, "ProductoA", orders[0].Product)

	w = a.do(t, http.MethodGet, "/api/reportes/productos", "", nil)
	assert.Equal(t, []domain.ProductQuantity{{Product: "ProductoA", Quantity: 3}}, decode[[]domain.ProductQuantity](t, w))
}

func TestPlaceOrderMissingFields(t *testing.T) {
	a := setupAPI(t)

	w := a.do(t, http.MethodPost, "/api/pedidos", `{"cliente":"Juan","producto":"","cantidad":0,"costo":150,"zona":"Bernal"}`, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	resp := decode[map[string]any](t, w)
	assert.Equal(t, false, resp["success"])
	assert.NotEmpty(t, resp["error"])
	details, ok := resp["details"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, details, "producto")
	assert.Contains(t, details, "cantidad")

	w = a.do(t, http.MethodPost, "/api/pedidos", `not json`, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCheckoutEndpoint(t *testing.T) {
	a := setupAPI(t)
	a.seedProduct(t, "A", 1, 2, 10)

	w := a.do(t, http.MethodPost, "/api/pedidos/lote", `{"cliente":"Ana","zona":"Quilmes","lineas":[{"producto":"A","cantidad":2,"costo":2},{"producto":"B","cantidad":1,"costo":5}]}`, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Len(t, decode[checkoutResponse](t, w).IDs, 2)

	w = a.do(t, http.MethodGet, "/api/pedidos", "", nil)
	assert.Len(t, decode[[]domain.Order](t, w), 2)
}

func TestImportCSVEndpoint(t *testing.T) {
	a := setupAPI(t)

	body, err := json.Marshal(csvImportRequest{CSV: "nombre,costo,precio_venta,stock\nX,10,20,5\nX,12,22,7"})
	require.NoError(t, err)
	w := a.do(t, http.MethodPost, "/api/productos/csv", string(body), nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := decode[csvImportResponse](t, w)
	assert.True(t, resp.Success)
	assert.Equal(t, 1, resp.Created)
	assert.Equal(t, 1, resp.Updated)

	w = a.do(t, http.MethodGet, "/api/productos/costo/X", "", nil)
	assert.JSONEq(t, `{"costo":12}`, w.Body.String())

	w = a.do(t, http.MethodPost, "/api/productos/csv", "nombre,costo,precio_venta,stock\nY,1,2,3\n", map[string]string{"Content-Type": "text/csv"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = a.do(t, http.MethodGet, "/api/productos/lista", "", nil)
	assert.Len(t, decode[[]domain.Product](t, w), 2)
}

func TestImportCSVEndpointRejects(t *testing.T) {
	a := setupAPI(t)
	a.seedProduct(t, "X", 1, 2, 3)

	w := a.do(t, http.MethodPost, "/api/productos/csv", `{"csv":"nombre,costo,precio_venta\nX,10,20"}`, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "stock")

	w = a.do(t, http.MethodPost, "/api/productos/csv", `{"csv":"nombre,costo,precio_venta,stock\nX,10,20,5\nY,abc,1,1"}`, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "line 3")

	w = a.do(t, http.MethodGet, "/api/productos/stock/X", "", nil)
	assert.JSONEq(t, `{"stock":3}`, w.Body.String())
}

func TestEditAndDeleteRequireAuth(t *testing.T) {
	a := setupAPI(t)
	a.seedProduct(t, "Yerba", 50, 80, 12)

	w := a.do(t, http.MethodPost, "/api/pedidos", `{"cliente":"Luis","producto":"Yerba","cantidad":5,"costo":80,"zona":"Wilde"}`, nil)
	require.Equal(t, http.StatusCreated, w.Code)
	id := decode[placeOrderResponse](t, w).ID
	path := "/api/pedidos/" + strconv.FormatInt(id, 10)

	w = a.do(t, http.MethodDelete, path, "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	w = a.do(t, http.MethodDelete, path, "", map[string]string{"Authorization": "Bearer nope"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	auth := map[string]string{"Authorization": "Bearer " + a.token(t)}

	w = a.do(t, http.MethodPut, path, `{"cantidad":2,"costo":75,"zona":"Bernal"}`, auth)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	w = a.do(t, http.MethodGet, "/api/productos/stock/Yerba", "", nil)
	assert.JSONEq(t, `{"stock":10}`, w.Body.String())

	w = a.do(t, http.MethodDelete, path, "", auth)
	require.Equal(t, http.StatusOK, w.Code)
	w = a.do(t, http.MethodGet, "/api/productos/stock/Yerba", "", nil)
	assert.JSONEq(t, `{"stock":12}`, w.Body.String())

	w = a.do(t, http.MethodDelete, path, "", auth)
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = a.do(t, http.MethodDelete, "/api/pedidos/abc", "", auth)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	a := setupAPI(t)
	a.token(t)

	w := a.do(t, http.MethodPost, "/api/auth/login", `{"email":"admin@example.com","password":"wrong"}`, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestDeleteProductRequiresAdmin(t *testing.T) {
	a := setupAPI(t)
	a.seedProduct(t, "Harina", 1, 2, 3)

	w := a.do(t, http.MethodDelete, "/api/productos/Harina", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	auth := map[string]string{"Authorization": "Bearer " + a.token(t)}
	w = a.do(t, http.MethodDelete, "/api/productos/Harina", "", auth)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	w = a.do(t, http.MethodDelete, "/api/productos/Harina", "", auth)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRegisterProductEndpoint(t *testing.T) {
	a := setupAPI(t)

	w := a.do(t, http.MethodPost, "/api/productos", `{"nombre":"Sal","costo":1,"precio_venta":2,"stock":0}`, nil)
	assert.Equal(t, http.StatusCreated, w.Code)
	w = a.do(t, http.MethodPost, "/api/productos", `{"nombre":"Sal","costo":1.5,"precio_venta":2,"stock":4}`, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w = a.do(t, http.MethodPost, "/api/productos", `{"nombre":"","costo":-1,"precio_venta":2,"stock":4}`, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestReportValidation(t *testing.T) {
	a := setupAPI(t)

	w := a.do(t, http.MethodGet, "/api/reportes/ventas?dias=cero", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = a.do(t, http.MethodGet, "/api/reportes/productos?fecha=19-10-2026", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = a.do(t, http.MethodGet, "/api/pedidos?fecha=ayer", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = a.do(t, http.MethodGet, "/api/reportes/ventas", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "[]\n", w.Body.String())
}

func TestInvoicePDF(t *testing.T) {
	a := setupAPI(t)
	a.seedProduct(t, "ProductoA", 100, 150, 10)

	w := a.do(t, http.MethodGet, "/api/facturas/Juan", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = a.do(t, http.MethodPost, "/api/pedidos", `{"cliente":"Juan","producto":"ProductoA","cantidad":3,"costo":150,"zona":"Bernal"}`, nil)
	require.Equal(t, http.StatusCreated, w.Code)

	w = a.do(t, http.MethodGet, "/api/facturas/Juan?fecha="+today, "", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "factura-Juan-"+today+".pdf")
	assert.True(t, strings.HasPrefix(w.Body.String(), "%PDF"))
}

func TestImportCSVEndpointRejectsOversizedBody(t *testing.T) {
	a := setupAPI(t)

	var body strings.Builder
	body.WriteString("nombre,costo,precio_venta,stock\n")
	for body.Len() <= maxCSVBytes+(1<<20) {
		body.WriteString("Producto,1,2,3\n")
	}

	w := a.do(t, http.MethodPost, "/api/productos/csv", body.String(), map[string]string{"Content-Type": "text/csv"})
	require.Equal(t, http.StatusRequestEntityTooLarge, w.Code, w.Body.String())
	assert.Equal(t, false, decode[map[string]any](t, w)["success"])

	payload, err := json.Marshal(csvImportRequest{CSV: body.String()})
	require.NoError(t, err)
	w = a.do(t, http.MethodPost, "/api/productos/csv", string(payload), nil)
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)

	w = a.do(t, http.MethodGet, "/api/productos/lista", "", nil)
	assert.Equal(t, "[]\n", w.Body.String())
}

func TestStoreFailureReportsServerError(t *testing.T) {
	a := setupAPI(t)
	require.NoError(t, a.db.Close())

	cases := []struct {
		method, path, body string
	}{
		{http.MethodGet, "/api/productos?buscar=x", ""},
		{http.MethodPost, "/api/pedidos", `{"cliente":"Juan","producto":"A","cantidad":1,"costo":10,"zona":"Bernal"}`},
		{http.MethodGet, "/api/reportes/ventas", ""},
	}
	for _, tc := range cases {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			w := a.do(t, tc.method, tc.path, tc.body, nil)
			require.Equal(t, http.StatusInternalServerError, w.Code)
			resp := decode[map[string]any](t, w)
			assert.Equal(t, false, resp["success"])
			assert.Contains(t, resp["error"], "database is closed")
		})
	}
}

func TestListClientsEndpoint(t *testing.T) {
	a := setupAPI(t)

	w := a.do(t, http.MethodGet, "/api/clientes/lista", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "[]\n", w.Body.String())

	require.NoError(t, a.svc.Clients.EnsureClient(context.Background(), "Luis"))
	require.NoError(t, a.svc.Clients.EnsureClient(context.Background(), "Ana"))

	w = a.do(t, http.MethodGet, "/api/clientes/lista", "", nil)
	clients := decode[[]domain.Client](t, w)
	require.Len(t, clients, 2)
	assert.Equal(t, "Ana", clients[0].Name)
	assert.Equal(t, "Luis", clients[1].Name)
}

func TestOrderChangesLogActingUser(t *testing.T) {
	a := setupAPI(t)
	a.seedProduct(t, "Yerba", 50, 80, 12)

	var logs bytes.Buffer
	log.SetOutput(&logs)
	t.Cleanup(func() { log.SetOutput(os.Stderr) })

	w := a.do(t, http.MethodPost, "/api/pedidos", `{"cliente":"Luis","producto":"Yerba","cantidad":5,"costo":80,"zona":"Wilde"}`, nil)
	require.Equal(t, http.StatusCreated, w.Code)
	path := "/api/pedidos/" + strconv.FormatInt(decode[placeOrderResponse](t, w).ID, 10)

	session := a.login(t)
	auth := map[string]string{"Authorization": "Bearer " + session.Token}
	byUser := "by user " + strconv.FormatInt(session.User.ID, 10)

	w = a.do(t, http.MethodPut, path, `{"cantidad":2,"costo":75,"zona":"Bernal"}`, auth)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, logs.String(), "updated "+byUser)

	w = a.do(t, http.MethodDelete, path, "", auth)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, logs.String(), "deleted "+byUser)
}
