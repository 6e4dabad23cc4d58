// Пакет contentstore — HTTP-клиент content-addressed хранилища (IPFS API).
//
// Идентификатор объекта — детерминированный хэш его байтов: повторная
// загрузка одинакового содержимого возвращает тот же ContentID и не
// дублирует хранение. Транзиентные сбои (транспорт, 5xx) повторяются
// с ограниченным экспоненциальным backoff, после чего наружу уходит
// ErrStoreUnavailable — загрузка никогда не теряется молча.
package contentstore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bigkaa/bookmarket/internal/domain/model"
)

var (
	// ErrStoreUnavailable — хранилище недоступно после всех retry.
	ErrStoreUnavailable = errors.New("content store недоступен")
	// ErrNotFound — объект с таким ContentID хранилищу неизвестен.
	ErrNotFound = errors.New("объект не найден в content store")
)

const (
	// maxAttempts — число попыток загрузки при транзиентных сбоях.
	maxAttempts = 3
	// baseBackoff — начальная задержка экспоненциального backoff.
	baseBackoff = 200 * time.Millisecond
)

// addResponse — ответ POST /api/v0/add (формат IPFS API).
type addResponse struct {
	Hash string `json:"Hash"`
	Size int64  `json:"Size,string"`
}

// Client — HTTP-клиент content-addressed хранилища.
type Client struct {
	httpClient *http.Client
	baseURL    string
	gatewayURL string
	logger     *slog.Logger

	sleep func(context.Context, time.Duration) error // подменяется в тестах
}

// New создаёт клиент хранилища.
// baseURL — URL IPFS API (например, http://ipfs:5001).
// gatewayURL — публичный gateway для ссылок на скачивание.
func New(baseURL, gatewayURL string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(baseURL, "/"),
		gatewayURL: strings.TrimRight(gatewayURL, "/"),
		logger:     logger.With(slog.String("component", "content_store")),
		sleep:      sleepCtx,
	}
}

// Put загружает байты в хранилище и возвращает ContentObject.
// Идемпотентна: одинаковые байты дают одинаковый ContentID.
// Повторяет до maxAttempts раз при транспортных ошибках и 5xx.
func (c *Client) Put(ctx context.Context, data []byte, mime model.MimeClass) (model.ContentObject, error) {
	var lastErr error

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if attempt > 1 {
			delay := baseBackoff << (attempt - 2)
			if err := c.sleep(ctx, delay); err != nil {
				return model.ContentObject{}, err
			}
			c.logger.Warn("Повтор загрузки в content store",
				slog.Int("attempt", attempt),
				slog.String("error", lastErr.Error()),
			)
		}

		obj, retryable, err := c.putOnce(ctx, data, mime)
		if err == nil {
			return obj, nil
		}
		if !retryable {
			return model.ContentObject{}, err
		}
		lastErr = err
	}

	return model.ContentObject{}, fmt.Errorf("%w: %d попыток исчерпано: %s",
		ErrStoreUnavailable, maxAttempts, lastErr.Error())
}

// putOnce выполняет одну попытку загрузки.
// retryable == true для транспортных ошибок и 5xx.
func (c *Client) putOnce(ctx context.Context, data []byte, mime model.MimeClass) (model.ContentObject, bool, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", string(mime))
	if err != nil {
		return model.ContentObject{}, false, fmt.Errorf("создание multipart: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return model.ContentObject{}, false, fmt.Errorf("запись multipart: %w", err)
	}
	if err := writer.Close(); err != nil {
		return model.ContentObject{}, false, fmt.Errorf("закрытие multipart: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/v0/add", &body)
	if err != nil {
		return model.ContentObject{}, false, fmt.Errorf("создание запроса add: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return model.ContentObject{}, true, fmt.Errorf("запрос add: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return model.ContentObject{}, true, fmt.Errorf("add: статус %d", resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		return model.ContentObject{}, false, fmt.Errorf("add: неожиданный статус %d", resp.StatusCode)
	}

	var ar addResponse
	if err := json.NewDecoder(resp.Body).Decode(&ar); err != nil {
		return model.ContentObject{}, false, fmt.Errorf("декодирование ответа add: %w", err)
	}
	if ar.Hash == "" {
		return model.ContentObject{}, false, fmt.Errorf("add: пустой Hash в ответе")
	}

	return model.ContentObject{
		ContentID:  ar.Hash,
		ByteLength: int64(len(data)),
		MimeClass:  mime,
	}, false, nil
}

// Get возвращает байты объекта по ContentID.
// ErrNotFound — объект неизвестен; ErrStoreUnavailable — транспорт/5xx.
func (c *Client) Get(ctx context.Context, contentID string) ([]byte, error) {
	reqURL := fmt.Sprintf("%s/api/v0/cat?arg=%s", c.baseURL, url.QueryEscape(contentID))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("создание запроса cat: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrStoreUnavailable, err.Error())
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("%w: чтение тела: %s", ErrStoreUnavailable, err.Error())
		}
		return data, nil
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%w: %s", ErrNotFound, contentID)
	case resp.StatusCode >= 500:
		return nil, fmt.Errorf("%w: статус %d", ErrStoreUnavailable, resp.StatusCode)
	default:
		return nil, fmt.Errorf("cat: неожиданный статус %d", resp.StatusCode)
	}
}

// GatewayURL возвращает публичную ссылку на скачивание объекта.
func (c *Client) GatewayURL(contentID string) string {
	return fmt.Sprintf("%s/ipfs/%s", c.gatewayURL, contentID)
}

// sleepCtx ждёт delay или отмену контекста.
func sleepCtx(ctx context.Context, delay time.Duration) error {
	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
