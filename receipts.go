package main

import (
	"errors"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"familyhub/models"
	"familyhub/pkg/receipt"
)

const maxReceiptSize = 5 * 1024 * 1024

var (
	scannerOnce sync.Once
	scanner     *receipt.Scanner
)

func receiptScanner() *receipt.Scanner {
	scannerOnce.Do(func() {
		lang := os.Getenv("OCR_LANGUAGE")
		if lang == "" {
			lang = "eng"
		}
		scanner = receipt.NewScanner(receipt.WithLanguage(lang))
	})
	return scanner
}

// expenseDraft is the prefill returned from a scanned receipt; the caller
// reviews it before (or instead of) the expense row being created.
type expenseDraft struct {
	Amount      float64   `json:"amount"`
	Category    string    `json:"category"`
	Description string    `json:"description"`
	Date        time.Time `json:"date"`
	Confidence  float64   `json:"confidence"`
}

// scanReceiptHandler accepts a multipart receipt image, stores it, OCRs the
// total and answers with a prefilled expense draft. With create=true the
// expense is created through the ordinary gateway and linked to the upload.
func scanReceiptHandler(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, failResult("file missing"))
		return
	}
	if file.Size > maxReceiptSize {
		c.JSON(http.StatusBadRequest, failResult("file too large (max 5MB)"))
		return
	}

	dir := filepath.Join(uploadBaseDir(), "receipts")
	if err := os.MkdirAll(dir, 0755); err != nil {
		c.JSON(http.StatusInternalServerError, failResult("mkdir failed"))
		return
	}
	fullPath := filepath.Join(dir, filepath.Base(file.Filename))
	if err := c.SaveUploadedFile(file, fullPath); err != nil {
		c.JSON(http.StatusInternalServerError, failResult("save failed"))
		return
	}

	up := models.Upload{
		FileName:    file.Filename,
		StorePath:   filepath.Join("receipts", filepath.Base(file.Filename)),
		ContentType: file.Header.Get("Content-Type"),
	}
	if err := db.Create(&up).Error; err != nil {
		log.Printf("failed to record upload %s: %v", file.Filename, err)
		c.JSON(http.StatusInternalServerError, failResult("failed to record upload"))
		return
	}

	draft, scanErr := scanStoredReceipt(&up, fullPath)
	if scanErr != nil {
		msg := "could not read an amount from the receipt"
		if !errors.Is(scanErr, receipt.ErrNoAmount) {
			msg = "receipt scan failed"
		}
		c.JSON(http.StatusOK, gin.H{"success": false, "error": msg, "uploadId": up.ID})
		return
	}
	draft.Category = strings.TrimSpace(c.PostForm("category"))
	if draft.Category == "" {
		draft.Category = "other"
	}
	if d := strings.TrimSpace(c.PostForm("description")); d != "" {
		draft.Description = d
	}

	if c.PostForm("create") != "true" {
		c.JSON(http.StatusOK, gin.H{"success": true, "draft": draft, "uploadId": up.ID})
		return
	}

	res := createExpenseFromDraft(&up, draft)
	c.JSON(http.StatusOK, gin.H{"success": res.Success, "error": res.Error, "fields": res.Fields, "draft": draft, "uploadId": up.ID})
}

// scanStoredReceipt runs OCR and keeps the upload row's failure state in
// sync, so unreadable receipts stay visible for review.
func scanStoredReceipt(up *models.Upload, fullPath string) (*expenseDraft, error) {
	d, err := receiptScanner().ScanFile(fullPath)
	if err != nil {
		up.Failed = true
		up.FailedReason = err.Error()
		if len(up.FailedReason) > 255 {
			up.FailedReason = up.FailedReason[:255]
		}
		if dbErr := db.Save(up).Error; dbErr != nil {
			log.Printf("failed to mark upload %s failed: %v", up.ID, dbErr)
		}
		return nil, err
	}
	return &expenseDraft{
		Amount:      d.Amount,
		Description: "Receipt " + up.FileName,
		Date:        time.Now(),
		Confidence:  d.Confidence,
	}, nil
}

// createExpenseFromDraft pushes a draft through the expense gateway and, on
// success, links the upload to the newest matching expense row.
func createExpenseFromDraft(up *models.Upload, draft *expenseDraft) mutationResult {
	res := createExpense(models.ExpenseInput{
		Amount:      draft.Amount,
		Category:    draft.Category,
		Description: draft.Description,
		Date:        draft.Date,
	})
	if !res.Success {
		return res
	}
	var e models.Expense
	if err := db.Where("description = ?", draft.Description).
		Order("created_at desc").First(&e).Error; err == nil {
		up.ExpenseID = &e.ID
		if err := db.Save(up).Error; err != nil {
			log.Printf("failed to link upload %s to expense %s: %v", up.ID, e.ID, err)
		}
	}
	return res
}
