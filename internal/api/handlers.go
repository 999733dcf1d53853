package api

import (
	"context"
	"encoding/json"
	"fmt"
	"mime"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/sells-group/gajian-cli/internal/model"
	"github.com/sells-group/gajian-cli/internal/pivot"
	"github.com/sells-group/gajian-cli/internal/session"
	"github.com/sells-group/gajian-cli/internal/stage"
	"github.com/sells-group/gajian-cli/internal/store"
	"github.com/sells-group/gajian-cli/internal/tableio"
	"github.com/sells-group/gajian-cli/internal/tariff"
	"github.com/sells-group/gajian-cli/internal/voucher"
	"github.com/sells-group/gajian-cli/internal/workflow"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// DocumentFunc builds the voucher document for a date from configuration.
type DocumentFunc func(date model.Date) (voucher.Document, error)

// Handler serves the workflow endpoints.
type Handler struct {
	svc       *workflow.Service
	document  DocumentFunc
	maxUpload int64
	now       func() time.Time
}

// NewHandler returns a Handler over svc.
func NewHandler(svc *workflow.Service, document DocumentFunc) *Handler {
	return &Handler{svc: svc, document: document, now: time.Now}
}

// ErrorResponse is the body of every non-2xx JSON reply.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// TableResponse carries one table as JSON. Warning is set when the table
// is empty.
type TableResponse struct {
	Count   int    `json:"count"`
	Rows    any    `json:"rows"`
	Warning string `json:"warning,omitempty"`
}

func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) ListSessions(w http.ResponseWriter, r *http.Request) {
	filter := store.ListFilter{
		Limit:  queryInt(r, "limit"),
		Offset: queryInt(r, "offset"),
	}
	list, err := h.svc.ListSessions(r.Context(), filter)
	if err != nil {
		writeServiceError(w, "list sessions", err)
		return
	}
	writeJSON(w, http.StatusOK, table(list, len(list)))
}

func (h *Handler) CreateSession(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body", err)
			return
		}
	}
	sess, err := h.svc.NewSession(r.Context(), req.Name)
	if err != nil {
		writeServiceError(w, "create session", err)
		return
	}
	writeJSON(w, http.StatusCreated, sess.Summary())
}

func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	sess, err := h.svc.Session(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, "get session", err)
		return
	}
	writeJSON(w, http.StatusOK, sess.Summary())
}

func (h *Handler) DropSession(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DropSession(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, "drop session", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) GetRecords(w http.ResponseWriter, r *http.Request) {
	records, err := h.svc.Records(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, "get records", err)
		return
	}
	writeTable(w, r, "records.csv", records, len(records), func() *tableio.Table { return stage.RecordTable(records) })
}

func (h *Handler) IngestRecords(w http.ResponseWriter, r *http.Request) {
	h.upload(w, r, "ingest records", h.svc.Ingest)
}

func (h *Handler) GetLocations(w http.ResponseWriter, r *http.Request) {
	locations, err := h.svc.Locations(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, "get locations", err)
		return
	}
	writeTable(w, r, "template_lokasi_dan_tanggal.csv", locations, len(locations), func() *tableio.Table { return stage.LocationTable(locations) })
}

func (h *Handler) ImportLocations(w http.ResponseWriter, r *http.Request) {
	h.upload(w, r, "import locations", h.svc.ImportLocations)
}

func (h *Handler) GetWorkers(w http.ResponseWriter, r *http.Request) {
	workers, err := h.svc.Workers(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, "get workers", err)
		return
	}
	writeTable(w, r, "template_penggali.csv", workers, len(workers), func() *tableio.Table { return stage.WorkerTable(workers) })
}

func (h *Handler) ImportWorkers(w http.ResponseWriter, r *http.Request) {
	h.upload(w, r, "import workers", h.svc.ImportWorkers)
}

func (h *Handler) GetEnriched(w http.ResponseWriter, r *http.Request) {
	records, err := h.svc.Enriched(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, "get enriched", err)
		return
	}
	writeTable(w, r, "enriched.csv", records, len(records), func() *tableio.Table { return stage.EnrichedTable(records) })
}

func (h *Handler) GetTariffs(w http.ResponseWriter, r *http.Request) {
	records, err := h.svc.Calculate(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, "calculate", err)
		return
	}
	writeTable(w, r, "payment_result.csv", records, len(records), func() *tableio.Table { return tariff.Table(records) })
}

func (h *Handler) GetPivot(w http.ResponseWriter, r *http.Request) {
	rows, err := h.svc.Pivot(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, "pivot", err)
		return
	}
	writeTable(w, r, "rekap_pembayaran_per_tpid.csv", rows, len(pivot.Data(rows)), func() *tableio.Table { return pivot.Table(rows) })
}

// GetVouchers streams the voucher workbook. Query parameters date, place
// and license override the configured document text.
func (h *Handler) GetVouchers(w http.ResponseWriter, r *http.Request) {
	date := model.DateOf(h.now())
	if s := r.URL.Query().Get("date"); s != "" {
		d, ok := model.ParseDate(s)
		if !ok {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid date %q", s), nil)
			return
		}
		date = d
	}
	doc, err := h.document(date)
	if err != nil {
		writeServiceError(w, "voucher document", err)
		return
	}
	if v := r.URL.Query().Get("place"); v != "" {
		doc.Place = v
	}
	if v := r.URL.Query().Get("license"); v != "" {
		doc.License = v
	}

	ctx := r.Context()
	id := chi.URLParam(r, "id")
	records, err := h.svc.Calculate(ctx, id)
	if err != nil {
		writeServiceError(w, "calculate", err)
		return
	}
	if len(records) == 0 {
		writeJSON(w, http.StatusOK, table([]model.TariffedRecord{}, 0))
		return
	}

	f, err := voucher.Render(records, doc)
	if err != nil {
		writeServiceError(w, "render vouchers", err)
		return
	}
	defer f.Close()

	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": doc.FileName()}))
	if err := f.Write(w); err != nil {
		zap.L().Error("api: write vouchers", zap.String("session", id), zap.Error(err))
	}
}

// upload reads a table from a multipart "file" field or, failing that,
// the raw request body (CSV unless ?name= carries an .xlsx file name) and
// applies it to the session.
func (h *Handler) upload(w http.ResponseWriter, r *http.Request, action string, apply func(context.Context, string, *tableio.Table) (*session.Session, error)) {
	if h.maxUpload > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)
	}

	t, err := readTable(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid upload", err)
		return
	}

	sess, err := apply(r.Context(), chi.URLParam(r, "id"), t)
	if err != nil {
		writeServiceError(w, action, err)
		return
	}
	writeJSON(w, http.StatusOK, sess.Summary())
}

func readTable(r *http.Request) (*tableio.Table, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		file, header, err := r.FormFile("file")
		if err != nil {
			return nil, err
		}
		defer file.Close()
		return tableio.ReadUpload(header.Filename, file)
	}

	name := r.URL.Query().Get("name")
	if name == "" && mediaType == xlsxContentType {
		name = "upload.xlsx"
	}
	return tableio.ReadUpload(name, r.Body)
}

// writeTable replies with CSV when ?format=csv, JSON otherwise.
func writeTable(w http.ResponseWriter, r *http.Request, filename string, rows any, n int, tbl func() *tableio.Table) {
	if !strings.EqualFold(r.URL.Query().Get("format"), "csv") {
		writeJSON(w, http.StatusOK, table(rows, n))
		return
	}

	data, err := tableio.Bytes(tbl())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "encode csv", err)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": filename}))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func table(rows any, n int) TableResponse {
	resp := TableResponse{Count: n, Rows: rows}
	if n == 0 {
		resp.Warning = "no rows"
	}
	return resp
}

func queryInt(r *http.Request, key string) int {
	n, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// writeServiceError maps workflow errors onto status codes.
func writeServiceError(w http.ResponseWriter, action string, err error) {
	switch {
	case model.IsSessionNotFound(err):
		writeError(w, http.StatusNotFound, "session not found", err)
	case model.IsValidation(err):
		writeError(w, http.StatusBadRequest, action+" failed validation", err)
	case model.IsEmptyResult(err):
		writeJSON(w, http.StatusOK, TableResponse{Rows: []any{}, Warning: "no rows"})
	default:
		zap.L().Error("api: "+action, zap.Error(err))
		writeError(w, http.StatusInternalServerError, action+" failed", err)
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
