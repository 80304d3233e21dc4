package pdf

import (
	"fmt"
	"io"
	"time"

	"github.com/jung-kurt/gofpdf"

	"skinmuse/internal/models"
)

// ReportGenerator: интерфейс (удобно мокать в тестах)
type ReportGenerator interface {
	ActivityReport(w io.Writer, logs []models.ActivityLog, generatedAt time.Time) error
}

// DocumentGenerator рисует отчёты gofpdf. Без FontPath используется
// встроенный Helvetica (только латиница).
type DocumentGenerator struct {
	FontPath string // путь до TTF, например "assets/fonts/DejaVuSans.ttf"
	fontName string // внутреннее имя шрифта в PDF
}

func NewDocumentGenerator(fontPath string) *DocumentGenerator {
	name := "Helvetica"
	if fontPath != "" {
		name = "DejaVu"
	}
	return &DocumentGenerator{FontPath: fontPath, fontName: name}
}

var activityColumns = []struct {
	title string
	width float64
}{
	{"Time (UTC)", 38},
	{"User", 52},
	{"Role", 18},
	{"Action", 52},
	{"IP", 30},
}

func (g *DocumentGenerator) ActivityReport(w io.Writer, logs []models.ActivityLog, generatedAt time.Time) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Activity log report", false)
	pdf.SetAuthor("SkinMuse", false)
	pdf.SetMargins(10, 15, 10)
	pdf.SetAutoPageBreak(true, 15)
	g.addUTF8Font(pdf)

	// ===== Нумерация страниц
	pdf.AliasNbPages("")
	pdf.SetFooterFunc(func() {
		pdf.SetY(-12)
		pdf.SetFont(g.fontName, "", 9)
		pdf.CellFormat(0, 8, fmt.Sprintf("Page %d/{nb}", pdf.PageNo()), "", 0, "C", false, 0, "")
	})
	// шапка таблицы на каждой странице
	pdf.SetHeaderFunc(func() {
		if pdf.PageNo() > 1 {
			g.tableHeader(pdf)
		}
	})

	pdf.AddPage()

	// ===== Заголовок
	pdf.SetFont(g.fontName, "B", 16)
	pdf.CellFormat(0, 10, "ACTIVITY LOG REPORT", "", 1, "C", false, 0, "")
	pdf.SetFont(g.fontName, "", 10)
	sub := fmt.Sprintf("Generated %s  |  %d entries", generatedAt.UTC().Format("02.01.2006 15:04"), len(logs))
	pdf.CellFormat(0, 6, sub, "", 1, "C", false, 0, "")
	g.hr(pdf)

	g.tableHeader(pdf)
	pdf.SetFont(g.fontName, "", 8)
	for _, l := range logs {
		user := l.UserEmail
		if user == "" {
			user = "-"
		}
		role := l.UserRole
		if role == "" {
			role = "-"
		}
		cells := []string{
			l.CreatedAt.UTC().Format("2006-01-02 15:04:05"),
			truncate(user, 34),
			role,
			truncate(l.Action, 34),
			l.IPAddress,
		}
		for i, c := range cells {
			pdf.CellFormat(activityColumns[i].width, 6, c, "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}
	if len(logs) == 0 {
		pdf.CellFormat(0, 8, "No activity recorded.", "", 1, "C", false, 0, "")
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("render activity report: %w", err)
	}
	return nil
}

// ===== helpers =====

func (g *DocumentGenerator) tableHeader(pdf *gofpdf.Fpdf) {
	pdf.SetFont(g.fontName, "B", 9)
	pdf.SetFillColor(230, 230, 230)
	for _, c := range activityColumns {
		pdf.CellFormat(c.width, 7, c.title, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)
	pdf.SetFont(g.fontName, "", 8)
}

func (g *DocumentGenerator) hr(pdf *gofpdf.Fpdf) {
	y := pdf.GetY() + 1.5
	pdf.SetLineWidth(0.2)
	pdf.Line(10, y, 200, y)
	pdf.SetY(y + 3)
}

func (g *DocumentGenerator) addUTF8Font(pdf *gofpdf.Fpdf) {
	if g.FontPath == "" {
		return
	}
	// AddUTF8Font принимает путь до TTF
	pdf.AddUTF8Font(g.fontName, "", g.FontPath)
	pdf.AddUTF8Font(g.fontName, "B", g.FontPath)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
