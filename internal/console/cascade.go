package console

import (
	"context"
	"errors"
	"strings"

	"github.com/charlesng35/dairyadmin/pkg/client"
)

// ErrMCCRequired is returned when an MPP is chosen before an MCC.
var ErrMCCRequired = errors.New("console: select an MCC first")

// ErrUnknownMPP is returned when the MPP is not offered for the chosen MCC.
var ErrUnknownMPP = errors.New("console: MPP does not belong to the selected MCC")

// MPPLister loads MPP options of one MCC.
type MPPLister interface {
	ListMPPs(ctx context.Context, mccCode string, q client.ListQuery) (client.Page[client.OrgUnit], error)
}

// CascadeSelection is the MCC then MPP pair of the section allocation form.
type CascadeSelection struct {
	MCC     string
	MPP     string
	Options []client.OrgUnit

	lister MPPLister
	limit  int
}

// NewCascadeSelection returns an empty selection. limit caps how many MPP
// options are loaded for an MCC.
func NewCascadeSelection(lister MPPLister, limit int) *CascadeSelection {
	if limit <= 0 {
		limit = 100
	}
	return &CascadeSelection{lister: lister, limit: limit}
}

// SelectMCC sets the MCC, clears the MPP and loads its MPP options.
// Choosing an empty code resets the selection.
func (c *CascadeSelection) SelectMCC(ctx context.Context, code string) error {
	c.MCC = strings.TrimSpace(code)
	c.MPP = ""
	c.Options = nil
	if c.MCC == "" {
		return nil
	}
	page, err := c.lister.ListMPPs(ctx, c.MCC, client.ListQuery{Page: 1, Limit: c.limit})
	if err != nil {
		return err
	}
	c.Options = page.Items
	return nil
}

// MPPEnabled reports whether the MPP select is usable.
func (c *CascadeSelection) MPPEnabled() bool {
	return c.MCC != ""
}

// SelectMPP sets the MPP, which must be one of the loaded options.
func (c *CascadeSelection) SelectMPP(code string) error {
	if !c.MPPEnabled() {
		return ErrMCCRequired
	}
	code = strings.TrimSpace(code)
	for _, option := range c.Options {
		if strings.EqualFold(option.Code, code) {
			c.MPP = option.Code
			return nil
		}
	}
	return ErrUnknownMPP
}

// Complete reports whether both halves are chosen.
func (c *CascadeSelection) Complete() bool {
	return c.MCC != "" && c.MPP != ""
}
