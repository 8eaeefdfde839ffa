// Package client habla con la API de la tienda desde el CLI.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Lelo88/tienda-golang/internal/auth"
	"github.com/Lelo88/tienda-golang/internal/checkout"
	"github.com/Lelo88/tienda-golang/internal/httpx"
	"github.com/Lelo88/tienda-golang/internal/products"
)

const requestIDHeader = "X-Request-Id"

// CookieJar persiste las cookies de sesión entre ejecuciones.
type CookieJar interface {
	Cookies(ctx context.Context) ([]*http.Cookie, error)
	SaveCookies(ctx context.Context, cookies []*http.Cookie) error
}

// APIError es un error con el sobre estándar de la API.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("la API respondió %d", e.Status)
	}
	return e.Message
}

// OrderError es el rechazo de /api/enviar-pedido.
type OrderError struct {
	Status  int
	Message string
	Details string
}

func (e *OrderError) Error() string {
	if e.Details != "" {
		return e.Details
	}
	if e.Message != "" {
		return e.Message
	}
	return "Error al procesar el pedido"
}

// Session es la respuesta de login.
type Session struct {
	Email     string `json:"email"`
	ExpiresAt string `json:"expires_at"`
	Message   string `json:"message"`
}

// Account es la respuesta de registro.
type Account struct {
	UID     string `json:"uid"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

type Client struct {
	baseURL *url.URL
	http    *http.Client
	jar     CookieJar
}

// New crea el cliente. jar puede ser nil (sin sesión persistente).
func New(baseURL string, httpClient *http.Client, jar CookieJar) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("url de servidor inválida %q", baseURL)
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &Client{baseURL: u, http: httpClient, jar: jar}, nil
}

func (c *Client) ListProducts(ctx context.Context) ([]products.Product, error) {
	var out struct {
		Products []products.Product `json:"productos"`
	}
	if err := c.call(ctx, http.MethodGet, "/api/productos/", nil, "", &out); err != nil {
		return nil, err
	}
	return out.Products, nil
}

func (c *Client) GetProduct(ctx context.Context, id string) (products.Product, error) {
	var out products.Product
	err := c.call(ctx, http.MethodGet, "/api/productos/"+url.PathEscape(id), nil, "", &out)
	return out, err
}

func (c *Client) CreateProduct(ctx context.Context, input products.CreateProductInput) (products.Product, error) {
	body, err := json.Marshal(input)
	if err != nil {
		return products.Product{}, err
	}
	var out products.Product
	err = c.call(ctx, http.MethodPost, "/api/productos/", bytes.NewReader(body), "application/json", &out)
	return out, err
}

// UploadImage sube filename como campo "imagen" y devuelve la URL pública.
func (c *Client) UploadImage(ctx context.Context, filename string, content io.Reader) (string, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("imagen", filepath.Base(filename))
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(part, content); err != nil {
		return "", err
	}
	if err := writer.Close(); err != nil {
		return "", err
	}

	var out struct {
		URL string `json:"url_imagen"`
	}
	if err := c.call(ctx, http.MethodPost, "/api/imagenes", &buf, writer.FormDataContentType(), &out); err != nil {
		return "", err
	}
	return out.URL, nil
}

func (c *Client) Register(ctx context.Context, credentials auth.Credentials) (Account, error) {
	body, err := json.Marshal(credentials)
	if err != nil {
		return Account{}, err
	}
	var out Account
	err = c.call(ctx, http.MethodPost, "/api/registro", bytes.NewReader(body), "application/json", &out)
	return out, err
}

// Login inicia sesión; las cookies recibidas quedan en el jar.
func (c *Client) Login(ctx context.Context, credentials auth.Credentials) (Session, error) {
	body, err := json.Marshal(credentials)
	if err != nil {
		return Session{}, err
	}
	var out Session
	err = c.call(ctx, http.MethodPost, "/api/login", bytes.NewReader(body), "application/json", &out)
	return out, err
}

func (c *Client) Logout(ctx context.Context) error {
	return c.call(ctx, http.MethodPost, "/api/logout", nil, "", nil)
}

// PlaceOrder envía el carrito. Un rechazo vuelve como *OrderError.
func (c *Client) PlaceOrder(ctx context.Context, request checkout.Request) error {
	body, err := json.Marshal(request)
	if err != nil {
		return err
	}
	resp, err := c.do(ctx, http.MethodPost, "/api/enviar-pedido", bytes.NewReader(body), "application/json")
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var out struct {
		Success bool            `json:"success"`
		Error   json.RawMessage `json:"error"`
		Details string          `json:"details"`
	}
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	_ = json.Unmarshal(raw, &out)

	if resp.StatusCode == http.StatusOK && out.Success {
		return nil
	}
	return &OrderError{Status: resp.StatusCode, Message: errorMessage(out.Error), Details: out.Details}
}

// errorMessage acepta tanto "error":"texto" como el sobre {"code","message"}.
func errorMessage(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		return text
	}
	var body httpx.ErrorBody
	if err := json.Unmarshal(raw, &body); err == nil {
		return body.Message
	}
	return ""
}

func (c *Client) call(ctx context.Context, method, path string, body io.Reader, contentType string, out any) error {
	resp, err := c.do(ctx, method, path, body, contentType)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var envelope struct {
		Data  json.RawMessage  `json:"data"`
		Error *httpx.ErrorBody `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		if resp.StatusCode >= http.StatusBadRequest {
			return &APIError{Status: resp.StatusCode}
		}
		return fmt.Errorf("respuesta inválida de %s: %w", path, err)
	}

	if resp.StatusCode >= http.StatusBadRequest || envelope.Error != nil {
		apiErr := &APIError{Status: resp.StatusCode}
		if envelope.Error != nil {
			apiErr.Code = envelope.Error.Code
			apiErr.Message = envelope.Error.Message
		}
		return apiErr
	}

	if out == nil || len(envelope.Data) == 0 {
		return nil
	}
	return json.Unmarshal(envelope.Data, out)
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, contentType string) (*http.Response, error) {
	u := c.baseURL.ResolveReference(&url.URL{Path: c.baseURL.Path + path})

	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(requestIDHeader, uuid.NewString())
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	if c.jar != nil {
		cookies, err := c.jar.Cookies(ctx)
		if err != nil {
			return nil, fmt.Errorf("leer cookies: %w", err)
		}
		for _, cookie := range cookies {
			req.AddCookie(cookie)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}

	if c.jar != nil {
		if received := resp.Cookies(); len(received) > 0 {
			if err := c.jar.SaveCookies(ctx, received); err != nil {
				resp.Body.Close()
				return nil, fmt.Errorf("guardar cookies: %w", err)
			}
		}
	}
	return resp, nil
}

// HasSession indica si el jar tiene la cookie de sesión vigente.
func HasSession(ctx context.Context, jar CookieJar) (bool, error) {
	cookies, err := jar.Cookies(ctx)
	if err != nil {
		return false, err
	}
	for _, cookie := range cookies {
		if cookie.Name == auth.SessionCookie && cookie.Value != "" {
			return true, nil
		}
	}
	return false, nil
}

// SessionEmail devuelve el email guardado en la cookie user_email.
func SessionEmail(ctx context.Context, jar CookieJar) (string, error) {
	cookies, err := jar.Cookies(ctx)
	if err != nil {
		return "", err
	}
	for _, cookie := range cookies {
		if cookie.Name == auth.EmailCookie {
			if decoded, err := url.PathUnescape(cookie.Value); err == nil {
				return decoded, nil
			}
			return cookie.Value, nil
		}
	}
	return "", nil
}
