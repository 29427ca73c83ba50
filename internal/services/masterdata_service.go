package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/charlesng35/dairyadmin/internal/invalidation"
	"github.com/charlesng35/dairyadmin/internal/masterdata"
	apperrors "github.com/charlesng35/dairyadmin/pkg/errors"
	"github.com/charlesng35/dairyadmin/pkg/logger"
	"github.com/charlesng35/dairyadmin/pkg/metrics"
)

// ErrImportUnreadable is returned when the upload is not a usable workbook.
var ErrImportUnreadable = apperrors.New("IMPORT_UNREADABLE", "Uploaded file is not a valid workbook", http.StatusBadRequest)

// RowError reports why one spreadsheet row failed.
type RowError struct {
	Row     int    `json:"row"`
	Message string `json:"message"`
}

// ImportResult summarises a master data import. Rows succeed or fail independently.
type ImportResult struct {
	Type     masterdata.Type `json:"type"`
	Inserted int             `json:"inserted"`
	Updated  int             `json:"updated"`
	Failed   int             `json:"failed"`
	Errors   []RowError      `json:"errors"`
}

// ExportFile is a generated workbook with its download name.
type ExportFile struct {
	Filename string
	Content  []byte
}

var importActions = map[masterdata.Type]string{
	masterdata.Banks:    invalidation.ImportBanks,
	masterdata.Villages: invalidation.ImportVillages,
	masterdata.MCCs:     invalidation.ImportMCCs,
	masterdata.MPPs:     invalidation.ImportMPPs,
}

// MasterDataService imports and exports master records as workbooks.
type MasterDataService struct {
	banks        *BankService
	villages     *VillageService
	mccs         *MCCService
	mpps         *MPPService
	auditService *AuditService
	notifier     Notifier
	now          func() time.Time
}

// NewMasterDataService wires the per-entity services used for upserts and exports.
func NewMasterDataService(banks *BankService, villages *VillageService, mccs *MCCService, mpps *MPPService, auditService *AuditService, opts ...Option) (*MasterDataService, error) {
	if banks == nil || villages == nil || mccs == nil || mpps == nil {
		return nil, errors.New("master data service: entity services are required")
	}
	cfg := applyOptions(opts)
	return &MasterDataService{
		banks:        banks,
		villages:     villages,
		mccs:         mccs,
		mpps:         mpps,
		auditService: auditService,
		notifier:     cfg.notifier,
		now:          time.Now,
	}, nil
}

// Template returns the header-only workbook for t.
func (s *MasterDataService) Template(t masterdata.Type) (*ExportFile, error) {
	content, err := masterdata.Template(t)
	if err != nil {
		return nil, fmt.Errorf("master data service: template: %w", err)
	}
	return &ExportFile{Filename: masterdata.TemplateFilename(t), Content: content}, nil
}

// Export writes every stored record of type t.
func (s *MasterDataService) Export(ctx context.Context, t masterdata.Type) (*ExportFile, error) {
	ctx = ensureContext(ctx)

	records, err := s.records(ctx, t)
	if err != nil {
		return nil, err
	}
	content, err := masterdata.Export(t, records)
	if err != nil {
		return nil, fmt.Errorf("master data service: export: %w", err)
	}
	return &ExportFile{Filename: masterdata.Filename(t, s.now()), Content: content}, nil
}

// Import upserts every row of the uploaded workbook by natural key.
func (s *MasterDataService) Import(ctx context.Context, t masterdata.Type, r io.Reader) (*ImportResult, error) {
	ctx = ensureContext(ctx)

	action, ok := importActions[t]
	if !ok {
		return nil, apperrors.NewBadRequest(fmt.Sprintf("unknown master data type %q", t))
	}

	rows, err := masterdata.Parse(t, r)
	if err != nil {
		if errors.Is(err, masterdata.ErrMissingColumns) {
			return nil, ErrImportUnreadable.WithInternal(err).WithFields(map[string]string{"file": err.Error()})
		}
		return nil, ErrImportUnreadable.WithInternal(err)
	}

	result := &ImportResult{Type: t, Errors: []RowError{}}
	for _, row := range rows {
		inserted, err := s.upsert(ctx, t, row.Values)
		switch {
		case err != nil:
			result.Failed++
			result.Errors = append(result.Errors, RowError{Row: row.Number, Message: rowMessage(err)})
			metrics.ImportRows.WithLabelValues(string(t), "failed").Inc()
		case inserted:
			result.Inserted++
			metrics.ImportRows.WithLabelValues(string(t), "inserted").Inc()
		default:
			result.Updated++
			metrics.ImportRows.WithLabelValues(string(t), "updated").Inc()
		}
	}

	logger.WithModule("masterdata").Info("import finished",
		zap.String("type", string(t)),
		zap.Int("inserted", result.Inserted),
		zap.Int("updated", result.Updated),
		zap.Int("failed", result.Failed),
	)

	entry := AuditEntry{
		Action:   action,
		Resource: string(t),
		Metadata: map[string]any{"inserted": result.Inserted, "updated": result.Updated, "failed": result.Failed},
	}
	if result.Inserted+result.Updated > 0 {
		recordMutation(s.auditService, s.notifier, ctx, entry)
	} else {
		entry.Result = "failure"
		recordAudit(s.auditService, ctx, entry)
	}
	return result, nil
}

func (s *MasterDataService) upsert(ctx context.Context, t masterdata.Type, values masterdata.Record) (bool, error) {
	status, err := statusPointer(values["status"])
	if err != nil {
		return false, err
	}

	switch t {
	case masterdata.Banks:
		return s.banks.Upsert(ctx, BankInput{
			Name:     values["name"],
			Branch:   values["branch"],
			IFSCCode: values["ifsc_code"],
			Status:   status,
		})
	case masterdata.Villages:
		mcc := values["mcc_code"]
		return s.villages.Upsert(ctx, VillageInput{
			Name:    values["name"],
			Code:    values["code"],
			MCCCode: &mcc,
			Status:  status,
		})
	case masterdata.MCCs:
		return s.mccs.Upsert(ctx, OrgUnitInput{Code: values["code"], Name: values["name"], Status: status})
	case masterdata.MPPs:
		return s.mpps.Upsert(ctx, OrgUnitInput{
			Code:    values["code"],
			Name:    values["name"],
			MCCCode: values["mcc_code"],
			Status:  status,
		})
	}
	return false, fmt.Errorf("%w %q", masterdata.ErrUnknownType, t)
}

func (s *MasterDataService) records(ctx context.Context, t masterdata.Type) ([]masterdata.Record, error) {
	var out []masterdata.Record
	switch t {
	case masterdata.Banks:
		banks, err := s.banks.All(ctx)
		if err != nil {
			return nil, err
		}
		for _, b := range banks {
			out = append(out, masterdata.Record{"name": b.Name, "branch": b.Branch, "ifsc_code": b.IFSCCode, "status": masterdata.StatusCell(b.Status)})
		}
	case masterdata.Villages:
		villages, err := s.villages.All(ctx)
		if err != nil {
			return nil, err
		}
		for _, v := range villages {
			out = append(out, masterdata.Record{"name": v.Name, "code": v.Code, "mcc_code": v.MCCCode, "status": masterdata.StatusCell(v.Status)})
		}
	case masterdata.MCCs:
		mccs, err := s.mccs.All(ctx)
		if err != nil {
			return nil, err
		}
		for _, m := range mccs {
			out = append(out, orgUnitRecord(m.Code, m.Name, "", m.Status))
		}
	case masterdata.MPPs:
		mpps, err := s.mpps.All(ctx)
		if err != nil {
			return nil, err
		}
		for _, m := range mpps {
			out = append(out, orgUnitRecord(m.Code, m.Name, m.MCCCode, m.Status))
		}
	default:
		return nil, apperrors.NewBadRequest(fmt.Sprintf("unknown master data type %q", t))
	}
	return out, nil
}

func orgUnitRecord(code, name, mccCode string, status bool) masterdata.Record {
	record := masterdata.Record{"code": code, "name": name, "status": masterdata.StatusCell(status)}
	if mccCode != "" {
		record["mcc_code"] = mccCode
	}
	return record
}

func statusPointer(raw string) (*bool, error) {
	active, ok, err := masterdata.ParseStatus(raw)
	if err != nil {
		return nil, apperrors.NewValidation("", map[string]string{"status": err.Error()})
	}
	if !ok {
		return nil, nil
	}
	return &active, nil
}

// rowMessage flattens a row failure into one line for the import report.
func rowMessage(err error) string {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) && len(appErr.Fields) > 0 {
		keys := make([]string, 0, len(appErr.Fields))
		for key := range appErr.Fields {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		messages := make([]string, len(keys))
		for i, key := range keys {
			messages[i] = appErr.Fields[key]
		}
		return strings.Join(messages, "; ")
	}
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return "could not save row"
}
