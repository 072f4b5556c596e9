package handlers

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/GregMSThompson/moneylog/internal/dto"
	"github.com/GregMSThompson/moneylog/internal/errs"
	"github.com/GregMSThompson/moneylog/internal/gesture"
	"github.com/GregMSThompson/moneylog/internal/imaging"
	"github.com/GregMSThompson/moneylog/internal/ledger"
	"github.com/GregMSThompson/moneylog/internal/models"
	"github.com/GregMSThompson/moneylog/internal/services"
	"github.com/GregMSThompson/moneylog/internal/view"
)

// --- Stub response handler ---

type stubResponseHandler struct {
	writeSuccessCalled bool
	writeSuccessStatus int
	writeSuccessData   any

	handleErrorCalled bool
	handleError       error
}

func (s *stubResponseHandler) WriteSuccess(w http.ResponseWriter, _ *http.Request, status int, data any) {
	s.writeSuccessCalled = true
	s.writeSuccessStatus = status
	s.writeSuccessData = data
	w.WriteHeader(status)
}

func (s *stubResponseHandler) WriteError(w http.ResponseWriter, _ *http.Request, status int, _, _ string) {
	w.WriteHeader(status)
}

func (s *stubResponseHandler) HandleError(w http.ResponseWriter, _ *http.Request, err error) {
	s.handleErrorCalled = true
	s.handleError = err
	w.WriteHeader(http.StatusInternalServerError)
}

// --- Stub services ---

type stubLedger struct {
	summary       dto.StateSummary
	syncErr       error
	notices       []services.Notice
	entries       dto.EntryListResponse
	lastFilter    models.Filter
	setFilterErr  error
	saveErr       error
	lastForm      dto.EntryForm
	deleteErr     error
	lastDeleteID  string
	lastConfirmed bool
	lastChartType models.EntryType

	wishes      dto.WishListResponse
	lastWish    dto.WishForm
	lastDeposit dto.DepositForm
	lastWishID  string
	wishErr     error

	lastSettings dto.SettingsForm
	lastMove     dto.MoveRequest

	lastImage []byte
	imageErr  error

	keyCalls   int
	lastKey    string
	keyPresent bool
}

func (s *stubLedger) ApplyAccessKey(_ context.Context, present bool, value string) error {
	s.keyCalls++
	s.keyPresent = present
	s.lastKey = value
	return nil
}

func (s *stubLedger) Summary() dto.StateSummary      { return s.summary }
func (s *stubLedger) Sync(context.Context) error     { return s.syncErr }
func (s *stubLedger) Notices() []services.Notice     { return s.notices }
func (s *stubLedger) Manifest() dto.WebManifest      { return services.BuildManifest("k") }
func (s *stubLedger) Filter() models.Filter          { return s.lastFilter }
func (s *stubLedger) Entries() dto.EntryListResponse { return s.entries }
func (s *stubLedger) SetFilter(f models.Filter) error {
	s.lastFilter = f
	return s.setFilterErr
}
func (s *stubLedger) EntriesWith(f models.Filter) dto.EntryListResponse {
	s.lastFilter = f
	return s.entries
}
func (s *stubLedger) Chart(typ models.EntryType) ledger.ChartDataset {
	s.lastChartType = typ
	return ledger.ChartDataset{Type: typ}
}
func (s *stubLedger) SaveEntry(_ context.Context, form dto.EntryForm) error {
	s.lastForm = form
	return s.saveErr
}
func (s *stubLedger) DeleteEntry(_ context.Context, id string, confirmed bool) error {
	s.lastDeleteID, s.lastConfirmed = id, confirmed
	return s.deleteErr
}

func (s *stubLedger) Wishes() dto.WishListResponse { return s.wishes }
func (s *stubLedger) WishLogs(id string) ([]dto.EntryView, error) {
	s.lastWishID = id
	return nil, s.wishErr
}
func (s *stubLedger) SaveWish(_ context.Context, form dto.WishForm) error {
	s.lastWish = form
	return s.wishErr
}
func (s *stubLedger) CompleteWish(_ context.Context, id string, confirmed bool) error {
	s.lastWishID, s.lastConfirmed = id, confirmed
	return s.wishErr
}
func (s *stubLedger) Deposit(_ context.Context, id string, form dto.DepositForm) error {
	s.lastWishID, s.lastDeposit = id, form
	return s.wishErr
}
func (s *stubLedger) DeleteWish(_ context.Context, id string, confirmed bool) error {
	s.lastWishID, s.lastConfirmed = id, confirmed
	return s.wishErr
}

func (s *stubLedger) Categories(models.EntryType) []models.Category { return nil }
func (s *stubLedger) SaveSettings(_ context.Context, form dto.SettingsForm) error {
	s.lastSettings = form
	return nil
}
func (s *stubLedger) MovePayment(req dto.MoveRequest) ([]string, error) {
	s.lastMove = req
	return []string{"b", "a"}, nil
}
func (s *stubLedger) MoveCategory(req dto.MoveRequest) ([]models.Category, error) {
	s.lastMove = req
	return nil, nil
}

func (s *stubLedger) PrepareImage(_ context.Context, r io.Reader) (imaging.Result, error) {
	s.lastImage, _ = io.ReadAll(r)
	return imaging.Result{DataURL: "data:image/jpeg;base64,AA=="}, s.imageErr
}

type stubView struct {
	state   view.State
	lastTab view.Tab
	lastEv  gesture.Event
	tabErr  error
	flushed bool
}

func (s *stubView) State() view.State { return s.state }
func (s *stubView) SelectTab(tab view.Tab) error {
	s.lastTab = tab
	return s.tabErr
}
func (s *stubView) SetChartType(models.EntryType) error { return nil }
func (s *stubView) Touch(ev gesture.Event) bool {
	s.lastEv = ev
	return true
}
func (s *stubView) OpenLightbox(string) error { return nil }
func (s *stubView) CloseLightbox()            {}
func (s *stubView) Flush()                    { s.flushed = true }

func newDeps(svc *stubLedger, resp *stubResponseHandler) *Deps {
	return &Deps{
		ResponseHandler: resp,
		StateSvc:        svc,
		EntrySvc:        svc,
		WishSvc:         svc,
		SettingsSvc:     svc,
		ImageSvc:        svc,
		View:            &stubView{},
	}
}

// withChiParam injects a chi URL parameter into the request context.
func withChiParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	ctx := context.WithValue(r.Context(), chi.RouteCtxKey, rctx)
	return r.WithContext(ctx)
}

// --- Tests ---

func TestGetState_OK(t *testing.T) {
	svc := &stubLedger{summary: dto.StateSummary{EditMode: true, Entries: 3}}
	resp := &stubResponseHandler{}
	h := NewStateHandlers(newDeps(svc, resp))

	h.GetState(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/state", nil))

	if !resp.writeSuccessCalled || resp.writeSuccessStatus != http.StatusOK {
		t.Fatalf("expected WriteSuccess 200, got called=%v status=%d", resp.writeSuccessCalled, resp.writeSuccessStatus)
	}
	if got := resp.writeSuccessData.(dto.StateSummary); got.Entries != 3 {
		t.Errorf("summary = %+v", got)
	}
}

func TestSync_Error(t *testing.T) {
	svc := &stubLedger{syncErr: errs.NewExternalServiceError("remote data api", true, errors.New("down"))}
	resp := &stubResponseHandler{}
	h := NewStateHandlers(newDeps(svc, resp))

	h.Sync(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/api/sync", nil))

	if !resp.handleErrorCalled {
		t.Fatal("expected HandleError to be called")
	}
}

func TestSetAccessKey_OK(t *testing.T) {
	svc := &stubLedger{}
	resp := &stubResponseHandler{}
	h := NewStateHandlers(newDeps(svc, resp))

	req := httptest.NewRequest(http.MethodPost, "/api/session/key", strings.NewReader(`{"key":"owner"}`))
	h.SetAccessKey(httptest.NewRecorder(), req)

	if svc.keyCalls != 1 || !svc.keyPresent || svc.lastKey != "owner" {
		t.Errorf("calls=%d present=%v key=%q", svc.keyCalls, svc.keyPresent, svc.lastKey)
	}
	if !resp.writeSuccessCalled {
		t.Error("expected WriteSuccess to be called")
	}
}

func TestSetAccessKey_BadJSON(t *testing.T) {
	svc := &stubLedger{}
	resp := &stubResponseHandler{}
	h := NewStateHandlers(newDeps(svc, resp))

	h.SetAccessKey(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/api/session/key", strings.NewReader("{")))

	if svc.keyCalls != 0 || !resp.handleErrorCalled {
		t.Errorf("calls=%d handleError=%v", svc.keyCalls, resp.handleErrorCalled)
	}
}

func TestManifest_Bare(t *testing.T) {
	resp := &stubResponseHandler{}
	h := NewStateHandlers(newDeps(&stubLedger{}, resp))
	rr := httptest.NewRecorder()

	h.Manifest(rr, httptest.NewRequest(http.MethodGet, "/manifest.json", nil))

	if ct := rr.Header().Get("Content-Type"); ct != "application/manifest+json" {
		t.Errorf("content type = %q", ct)
	}
	if !strings.Contains(rr.Body.String(), `"start_url":"index.html?key=k"`) {
		t.Errorf("body = %s", rr.Body.String())
	}
	if resp.writeSuccessCalled {
		t.Error("manifest must not be wrapped in the success envelope")
	}
}

func TestListEntries_StoredFilter(t *testing.T) {
	svc := &stubLedger{entries: dto.EntryListResponse{Total: 42}}
	resp := &stubResponseHandler{}
	h := NewEntryHandlers(newDeps(svc, resp))

	h.ListEntries(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/entries", nil))

	if got := resp.writeSuccessData.(dto.EntryListResponse); got.Total != 42 {
		t.Errorf("response = %+v", got)
	}
	if svc.lastFilter != (models.Filter{}) {
		t.Error("stored filter must be used as is")
	}
}

func TestListEntries_QueryFilter(t *testing.T) {
	svc := &stubLedger{}
	resp := &stubResponseHandler{}
	h := NewEntryHandlers(newDeps(svc, resp))

	req := httptest.NewRequest(http.MethodGet, "/api/entries?start=2025-03-01&keyword=tea&payment=%E7%8F%BE%E9%87%91", nil)
	h.ListEntries(httptest.NewRecorder(), req)

	want := models.Filter{Start: "2025-03-01", Keyword: "tea", Payment: "現金"}
	if svc.lastFilter != want {
		t.Errorf("filter = %+v, want %+v", svc.lastFilter, want)
	}
}

func TestListEntries_BadDate(t *testing.T) {
	resp := &stubResponseHandler{}
	h := NewEntryHandlers(newDeps(&stubLedger{}, resp))

	h.ListEntries(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/entries?start=03/01", nil))

	var ve *errs.ValidationError
	if !errors.As(resp.handleError, &ve) {
		t.Fatalf("expected ValidationError, got %v", resp.handleError)
	}
}

func TestCreateEntry_OK(t *testing.T) {
	svc := &stubLedger{}
	resp := &stubResponseHandler{}
	h := NewEntryHandlers(newDeps(svc, resp))

	body := `{"id":"ignored","item":"tea","amount":45,"mainCategory":"飲食"}`
	h.CreateEntry(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/api/entries", strings.NewReader(body)))

	if resp.writeSuccessStatus != http.StatusCreated {
		t.Fatalf("status = %d", resp.writeSuccessStatus)
	}
	if svc.lastForm.ID != "" || svc.lastForm.Item != "tea" || *svc.lastForm.Amount != 45 {
		t.Errorf("form = %+v", svc.lastForm)
	}
}

func TestCreateEntry_BadJSON(t *testing.T) {
	resp := &stubResponseHandler{}
	h := NewEntryHandlers(newDeps(&stubLedger{}, resp))

	h.CreateEntry(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/api/entries", strings.NewReader("{")))

	var ve *errs.ValidationError
	if !errors.As(resp.handleError, &ve) {
		t.Fatalf("expected ValidationError, got %v", resp.handleError)
	}
}

func TestUpdateEntry_UsesPathID(t *testing.T) {
	svc := &stubLedger{}
	resp := &stubResponseHandler{}
	h := NewEntryHandlers(newDeps(svc, resp))

	req := httptest.NewRequest(http.MethodPut, "/api/entries/7", strings.NewReader(`{"amount":1,"mainCategory":"x"}`))
	h.UpdateEntry(httptest.NewRecorder(), withChiParam(req, "id", "7"))

	if svc.lastForm.ID != "7" {
		t.Errorf("id = %q, want 7", svc.lastForm.ID)
	}
}

func TestDeleteEntry_ConfirmHeader(t *testing.T) {
	svc := &stubLedger{}
	resp := &stubResponseHandler{}
	h := NewEntryHandlers(newDeps(svc, resp))

	req := httptest.NewRequest(http.MethodDelete, "/api/entries/7", nil)
	h.DeleteEntry(httptest.NewRecorder(), withChiParam(req, "id", "7"))
	if svc.lastConfirmed {
		t.Error("missing header must not confirm")
	}

	req = httptest.NewRequest(http.MethodDelete, "/api/entries/7", nil)
	req.Header.Set(ConfirmHeader, "true")
	h.DeleteEntry(httptest.NewRecorder(), withChiParam(req, "id", "7"))
	if !svc.lastConfirmed || svc.lastDeleteID != "7" {
		t.Errorf("confirmed=%v id=%q", svc.lastConfirmed, svc.lastDeleteID)
	}
}

func TestDeleteEntry_ServiceError(t *testing.T) {
	svc := &stubLedger{deleteErr: errs.NewConfirmationRequiredError("Delete?")}
	resp := &stubResponseHandler{}
	h := NewEntryHandlers(newDeps(svc, resp))

	req := httptest.NewRequest(http.MethodDelete, "/api/entries/7", nil)
	h.DeleteEntry(httptest.NewRecorder(), withChiParam(req, "id", "7"))

	if !resp.handleErrorCalled {
		t.Fatal("expected HandleError to be called")
	}
}

func TestGetChart_Type(t *testing.T) {
	svc := &stubLedger{}
	resp := &stubResponseHandler{}
	h := NewEntryHandlers(newDeps(svc, resp))

	h.GetChart(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/chart?type=%E6%94%B6%E5%85%A5", nil))

	if svc.lastChartType != models.EntryIncome {
		t.Errorf("chart type = %q", svc.lastChartType)
	}
}

func TestDeposit_OK(t *testing.T) {
	svc := &stubLedger{}
	resp := &stubResponseHandler{}
	h := NewWishHandlers(newDeps(svc, resp))

	req := httptest.NewRequest(http.MethodPost, "/api/wishes/w1/deposits", strings.NewReader(`{"kind":"money","amount":100}`))
	h.Deposit(httptest.NewRecorder(), withChiParam(req, "id", "w1"))

	if svc.lastWishID != "w1" || svc.lastDeposit.Kind != dto.DepositMoney || *svc.lastDeposit.Amount != 100 {
		t.Errorf("id=%q deposit=%+v", svc.lastWishID, svc.lastDeposit)
	}
	if resp.writeSuccessStatus != http.StatusCreated {
		t.Errorf("status = %d", resp.writeSuccessStatus)
	}
}

func TestCompleteWish_Confirm(t *testing.T) {
	svc := &stubLedger{}
	resp := &stubResponseHandler{}
	h := NewWishHandlers(newDeps(svc, resp))

	req := httptest.NewRequest(http.MethodPost, "/api/wishes/w1/complete", nil)
	req.Header.Set(ConfirmHeader, "TRUE")
	h.CompleteWish(httptest.NewRecorder(), withChiParam(req, "id", "w1"))

	if !svc.lastConfirmed || svc.lastWishID != "w1" {
		t.Errorf("confirmed=%v id=%q", svc.lastConfirmed, svc.lastWishID)
	}
}

func TestWishLogs_NotFound(t *testing.T) {
	svc := &stubLedger{wishErr: errs.NewNotFoundError("wish x not found")}
	resp := &stubResponseHandler{}
	h := NewWishHandlers(newDeps(svc, resp))

	req := httptest.NewRequest(http.MethodGet, "/api/wishes/x/logs", nil)
	h.WishLogs(httptest.NewRecorder(), withChiParam(req, "id", "x"))

	var nf *errs.NotFoundError
	if !errors.As(resp.handleError, &nf) {
		t.Fatalf("expected NotFoundError, got %v", resp.handleError)
	}
}

func TestSaveSettings_OK(t *testing.T) {
	svc := &stubLedger{}
	resp := &stubResponseHandler{}
	h := NewSettingsHandlers(newDeps(svc, resp))

	body := `{"categories":[{"main":"飲食","subRaw":"早餐,午餐"}],"payments":["現金"]}`
	h.SaveSettings(httptest.NewRecorder(), httptest.NewRequest(http.MethodPut, "/api/settings", strings.NewReader(body)))

	if len(svc.lastSettings.Categories) != 1 || svc.lastSettings.Categories[0].SubRaw != "早餐,午餐" {
		t.Errorf("settings = %+v", svc.lastSettings)
	}
}

func TestMovePayment_OK(t *testing.T) {
	svc := &stubLedger{}
	resp := &stubResponseHandler{}
	h := NewSettingsHandlers(newDeps(svc, resp))

	h.MovePayment(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/api/settings/payments/move", strings.NewReader(`{"index":1,"step":-1}`)))

	if svc.lastMove.Index != 1 || svc.lastMove.Step != -1 {
		t.Errorf("move = %+v", svc.lastMove)
	}
	if got := resp.writeSuccessData.([]string); got[0] != "b" {
		t.Errorf("payments = %v", got)
	}
}

func TestUploadImage_OK(t *testing.T) {
	svc := &stubLedger{}
	resp := &stubResponseHandler{}
	h := NewImageHandlers(newDeps(svc, resp))

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("image", "receipt.png")
	if err != nil {
		t.Fatal(err)
	}
	fw.Write([]byte("pixels"))
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/images", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	h.UploadImage(httptest.NewRecorder(), req)

	if string(svc.lastImage) != "pixels" {
		t.Errorf("image bytes = %q", svc.lastImage)
	}
	if got := resp.writeSuccessData.(imaging.Result); got.DataURL == "" {
		t.Error("expected a data url")
	}
}

func TestUploadImage_MissingField(t *testing.T) {
	resp := &stubResponseHandler{}
	h := NewImageHandlers(newDeps(&stubLedger{}, resp))

	req := httptest.NewRequest(http.MethodPost, "/api/images", strings.NewReader("nothing"))
	req.Header.Set("Content-Type", "text/plain")
	h.UploadImage(httptest.NewRecorder(), req)

	var ve *errs.ValidationError
	if !errors.As(resp.handleError, &ve) {
		t.Fatalf("expected ValidationError, got %v", resp.handleError)
	}
}

func TestViewTouchAndTab(t *testing.T) {
	resp := &stubResponseHandler{}
	v := &stubView{}
	deps := newDeps(&stubLedger{}, resp)
	deps.View = v
	h := NewViewHandlers(deps)

	body := `{"target":"page","phase":"start","touches":[{"x":200,"y":10}]}`
	h.Touch(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/api/view/touch", strings.NewReader(body)))
	if v.lastEv.Target != gesture.TargetPage || v.lastEv.Touches[0].X != 200 {
		t.Errorf("event = %+v", v.lastEv)
	}

	v.tabErr = errs.NewValidationError("unknown tab: x")
	h.SelectTab(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/api/view/tab", strings.NewReader(`{"tab":"x"}`)))
	if !resp.handleErrorCalled || v.lastTab != "x" {
		t.Errorf("tab=%q handled=%v", v.lastTab, resp.handleErrorCalled)
	}

	h.GetChart(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/view/chart?flush=true", nil))
	if !v.flushed {
		t.Error("flush=true must render the pending chart")
	}
}
