package voucher

import (
	"fmt"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/gajian-cli/internal/model"
)

// Signer is one name and title pair of the signature block.
type Signer struct {
	Name  string `yaml:"name" mapstructure:"name" json:"name"`
	Title string `yaml:"title" mapstructure:"title" json:"title"`
}

// Document is the free text printed on every voucher. Values are
// substituted verbatim.
type Document struct {
	PayerOrg string     `json:"payer_org"`
	Place    string     `json:"place"`
	License  string     `json:"license"`
	Date     model.Date `json:"date"`
	Payer    Signer     `json:"payer"`
	Officer  Signer     `json:"officer"`
}

var months = [...]string{
	"Januari", "Februari", "Maret", "April", "Mei", "Juni",
	"Juli", "Agustus", "September", "Oktober", "November", "Desember",
}

// DateText renders "<place>, <d> <month> <yyyy>" with Indonesian month names.
func (d Document) DateText() string {
	if !d.Date.IsSet() {
		return d.Place
	}
	t := d.Date.Time
	return fmt.Sprintf("%s, %d %s %d", d.Place, t.Day(), months[t.Month()-1], t.Year())
}

// FileName is the workbook name for this document.
func (d Document) FileName() string {
	name := fmt.Sprintf("Gajian IUP OP %s %s.xlsx", d.License, d.DateText())
	return strings.NewReplacer("/", "-", "\\", "-").Replace(name)
}

// Profile overrides document fields from a YAML file. Empty fields keep
// the configured value.
type Profile struct {
	PayerOrg string `yaml:"payer_org"`
	Place    string `yaml:"place"`
	License  string `yaml:"license"`
	Date     string `yaml:"date"`
	Payer    Signer `yaml:"payer"`
	Officer  Signer `yaml:"officer"`
}

// LoadProfile reads a voucher profile from a YAML file.
func LoadProfile(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "voucher: read profile %s", path)
	}

	var wrapper struct {
		Voucher Profile `yaml:"voucher"`
	}
	if err := yaml.Unmarshal(data, &wrapper); err != nil {
		return nil, eris.Wrap(err, "voucher: parse profile")
	}
	return &wrapper.Voucher, nil
}

// Apply returns doc with the profile's non-empty fields substituted.
func (p *Profile) Apply(doc Document) (Document, error) {
	if p == nil {
		return doc, nil
	}
	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	set(&doc.PayerOrg, p.PayerOrg)
	set(&doc.Place, p.Place)
	set(&doc.License, p.License)
	set(&doc.Payer.Name, p.Payer.Name)
	set(&doc.Payer.Title, p.Payer.Title)
	set(&doc.Officer.Name, p.Officer.Name)
	set(&doc.Officer.Title, p.Officer.Title)
	if p.Date != "" {
		d, ok := model.ParseDate(p.Date)
		if !ok {
			return doc, eris.Wrapf(model.ErrValidation, "voucher: profile date %q is not a date", p.Date)
		}
		doc.Date = d
	}
	return doc, nil
}
