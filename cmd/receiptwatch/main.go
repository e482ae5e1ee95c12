// receiptwatch scans a drop directory of receipt images, OCRs each one and
// records the extracted totals as expenses. With --watch it keeps running and
// picks up files as they appear.
package main

import (
	"flag"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"familyhub/models"
	"familyhub/pkg/receipt"
)

var imageExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

var (
	verbose bool
	dryRun  bool
)

func mustInitDBFromEnv() *gorm.DB {
	dsn := os.Getenv("DB_DSN")
	if dsn == "" {
		log.Fatalf("DB_DSN must be set in environment to run this tool")
	}
	gdb, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	return gdb
}

func main() {
	_ = godotenv.Load()

	dirFlag := flag.String("dir", "uploads/receipts", "directory to scan for receipt images")
	watch := flag.Bool("watch", false, "watch directory for new files")
	workers := flag.Int("workers", 0, "worker pool size (default NumCPU)")
	category := flag.String("category", "other", "expense category for scanned receipts")
	flag.BoolVar(&dryRun, "dry-run", false, "OCR only; skip all DB writes")
	flag.BoolVar(&verbose, "verbose", false, "verbose per-file logging")
	flag.Parse()

	if *workers <= 0 {
		*workers = runtime.NumCPU()
	}

	var db *gorm.DB
	if !dryRun {
		db = mustInitDBFromEnv()
	}
	scanner := receipt.NewScanner()

	proc := &processor{db: db, scanner: scanner, category: *category}

	files := listImageFiles(*dirFlag)
	log.Printf("found %d candidate files in %s", len(files), *dirFlag)
	runPool(*workers, files, func(name string) {
		proc.handle(filepath.Join(*dirFlag, name))
	})

	if !*watch {
		return
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		log.Fatalf("failed to create watcher: %v", err)
	}
	defer watcher.Close()
	if err := watcher.Add(*dirFlag); err != nil {
		log.Fatalf("failed to watch %s: %v", *dirFlag, err)
	}
	log.Printf("watching %s", *dirFlag)

	for {
		select {
		case ev, ok := <-watcher.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			if !imageExts[strings.ToLower(filepath.Ext(ev.Name))] {
				continue
			}
			// writers need a moment to finish the file
			time.Sleep(500 * time.Millisecond)
			proc.handle(ev.Name)
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			log.Printf("watcher error: %v", err)
		}
	}
}

type processor struct {
	db       *gorm.DB
	scanner  *receipt.Scanner
	category string

	mu   sync.Mutex
	done map[string]bool
}

func (p *processor) seen(path string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.done == nil {
		p.done = map[string]bool{}
	}
	if p.done[path] {
		return true
	}
	p.done[path] = true
	return false
}

// handle OCRs one image and records the expense plus its upload row. Images
// without a readable amount leave a failed upload row behind for review.
func (p *processor) handle(path string) {
	if p.seen(path) {
		return
	}
	name := filepath.Base(path)

	draft, err := p.scanner.ScanFile(path)
	if err != nil {
		if verbose {
			log.Printf("%s: %v", name, err)
		}
		if !dryRun {
			p.recordFailure(name, err)
		}
		return
	}
	if verbose || dryRun {
		log.Printf("%s: amount=%.2f raw=%q confidence=%.2f", name, draft.Amount, draft.Raw, draft.Confidence)
	}
	if dryRun {
		return
	}

	in := models.ExpenseInput{
		Amount:      draft.Amount,
		Category:    p.category,
		Description: "Receipt " + name,
		Date:        time.Now(),
	}
	if errs := in.Validate(); len(errs) > 0 {
		log.Printf("%s: invalid expense draft: %v", name, errs.Error())
		p.recordFailure(name, errs)
		return
	}

	// skip receipts already ingested
	var count int64
	p.db.Model(&models.Upload{}).Where("file_name = ? AND expense_id IS NOT NULL", name).Count(&count)
	if count > 0 {
		if verbose {
			log.Printf("%s: already ingested, skipping", name)
		}
		return
	}

	e := models.Expense{
		Amount:      models.FormatAmount(in.Amount),
		Category:    in.Category,
		Description: in.Description,
		Date:        in.Date,
	}
	if err := p.db.Create(&e).Error; err != nil {
		log.Printf("%s: failed to create expense: %v", name, err)
		return
	}
	up := models.Upload{
		FileName:  name,
		StorePath: filepath.Join("receipts", name),
		ExpenseID: &e.ID,
	}
	if err := p.db.Create(&up).Error; err != nil {
		log.Printf("%s: failed to record upload: %v", name, err)
	}
	log.Printf("%s: recorded expense %.2f (%s)", name, in.Amount, e.ID)
}

func (p *processor) recordFailure(name string, cause error) {
	reason := cause.Error()
	if len(reason) > 255 {
		reason = reason[:255]
	}
	up := models.Upload{
		FileName:     name,
		StorePath:    filepath.Join("receipts", name),
		Failed:       true,
		FailedReason: reason,
	}
	if err := p.db.Create(&up).Error; err != nil {
		log.Printf("%s: failed to record failure: %v", name, err)
	}
}

func listImageFiles(dir string) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		log.Printf("failed to read %s: %v", dir, err)
		return nil
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if imageExts[strings.ToLower(filepath.Ext(e.Name()))] {
			out = append(out, e.Name())
		}
	}
	return out
}

func runPool(workers int, items []string, fn func(string)) {
	if len(items) == 0 {
		return
	}
	jobs := make(chan string)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for it := range jobs {
				fn(it)
			}
		}()
	}
	for _, it := range items {
		jobs <- it
	}
	close(jobs)
	wg.Wait()
}
