package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"billbrain/internal/models"
	"billbrain/internal/splitter"
)

func (s *Server) handleStatus(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":  "ok",
		"service": "billbrain",
	})
}

func (s *Server) handleScan(c echo.Context) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return requestError{
			Status:  http.StatusBadRequest,
			Message: `multipart file field "file" is required`,
			Type:    "invalid_request_error",
		}
	}

	file, err := fileHeader.Open()
	if err != nil {
		return requestError{
			Status:  http.StatusBadRequest,
			Message: fmt.Sprintf("open uploaded file: %v", err),
			Type:    "invalid_request_error",
		}
	}
	defer file.Close()

	image, err := io.ReadAll(file)
	if err != nil {
		return requestError{
			Status:  http.StatusBadRequest,
			Message: fmt.Sprintf("read uploaded file: %v", err),
			Type:    "invalid_request_error",
		}
	}

	receipt, err := s.orch.Scan(c.Request().Context(), image, fileHeader.Header.Get("Content-Type"))
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, receipt)
}

type splitRequest struct {
	ReceiptData     json.RawMessage `json:"receipt_data"`
	UserInstruction string          `json:"user_instruction"`
	PeopleList      []string        `json:"people_list"`
	ApplyTax        bool            `json:"apply_tax"`
}

func (s *Server) handleSplit(c echo.Context) error {
	var req splitRequest
	if err := decodeRequestBody(c, &req); err != nil {
		return err
	}

	receipt, err := receiptFromRaw(req.ReceiptData)
	if err != nil {
		return err
	}

	result, err := s.orch.Split(c.Request().Context(), receipt, splitter.Request{
		Participants: req.PeopleList,
		Instruction:  req.UserInstruction,
		ApplyTax:     req.ApplyTax,
	})
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, result)
}

type chatModifyRequest struct {
	ReceiptData json.RawMessage   `json:"receipt_data"`
	History     []models.ChatTurn `json:"history"`
	UserMessage string            `json:"user_message"`
	PeopleList  []string          `json:"people_list"`
	ApplyTax    bool              `json:"apply_tax"`
}

type chatModifyResponse struct {
	Reply string             `json:"reply"`
	Split models.SplitResult `json:"split"`
}

func (s *Server) handleChatModify(c echo.Context) error {
	var req chatModifyRequest
	if err := decodeRequestBody(c, &req); err != nil {
		return err
	}

	receipt, err := receiptFromRaw(req.ReceiptData)
	if err != nil {
		return err
	}

	reply, result, err := s.orch.ChatModify(c.Request().Context(), receipt, req.History, req.UserMessage, splitter.Request{
		Participants: req.PeopleList,
		ApplyTax:     req.ApplyTax,
	})
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, chatModifyResponse{Reply: reply, Split: result})
}

// receiptFromRaw accepts the receipt either as a JSON object or as a
// JSON-encoded string containing one; clients of earlier revisions sent the
// extractor output back as a string.
func receiptFromRaw(raw json.RawMessage) (models.Receipt, error) {
	if len(raw) == 0 {
		return models.Receipt{}, requestError{
			Status:  http.StatusBadRequest,
			Message: "receipt_data is required",
			Type:    "invalid_request_error",
		}
	}

	data := []byte(raw)
	var asString string
	if err := json.Unmarshal(data, &asString); err == nil {
		data = []byte(asString)
	}

	var receipt models.Receipt
	if err := json.Unmarshal(data, &receipt); err != nil {
		return models.Receipt{}, requestError{
			Status:  http.StatusBadRequest,
			Message: fmt.Sprintf("receipt_data is not a valid receipt: %v", err),
			Type:    "invalid_request_error",
		}
	}
	return receipt, nil
}

func decodeRequestBody[T any](c echo.Context, target *T) error {
	req := c.Request()
	defer req.Body.Close()

	req.Body = http.MaxBytesReader(c.Response(), req.Body, maxBodyBytes)

	decoder := json.NewDecoder(req.Body)
	if err := decoder.Decode(target); err != nil {
		if errors.Is(err, io.EOF) {
			return requestError{
				Status:  http.StatusBadRequest,
				Message: "request body is required",
				Type:    "invalid_request_error",
			}
		}
		return requestError{
			Status:  http.StatusBadRequest,
			Message: fmt.Sprintf("invalid JSON payload: %v", err),
			Type:    "invalid_request_error",
		}
	}

	if err := decoder.Decode(&struct{}{}); err != io.EOF {
		return requestError{
			Status:  http.StatusBadRequest,
			Message: "request body must contain a single JSON object",
			Type:    "invalid_request_error",
		}
	}
	return nil
}
