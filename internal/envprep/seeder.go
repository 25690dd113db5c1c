package envprep

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"

	"pwtp/internal/config"
)

// SeedResult is the outcome of seeding one worker database.
type SeedResult struct {
	WorkerID int
	Success  bool
	Output   string
	Error    error
}

// Seeder implements Provisioner: it ensures per-worker databases exist,
// then runs the project's seed command once per worker in parallel, each
// pointed at its own database via DB_DATABASE.
type Seeder struct {
	config          *config.Config
	databaseManager *DatabaseManager
}

// NewSeeder creates a new Seeder
func NewSeeder(cfg *config.Config, dbManager *DatabaseManager) *Seeder {
	return &Seeder{
		config:          cfg,
		databaseManager: dbManager,
	}
}

// Run provisions workerCount test environments.
func (s *Seeder) Run(workerCount int) error {
	color.Cyan("\n╔════════════════════════════════════════════════════════════╗")
	color.Cyan("║             Provisioning Worker Environments               ║")
	color.Cyan("╚════════════════════════════════════════════════════════════╝\n")

	workers, err := s.databaseManager.EnsureDatabases(workerCount)
	if err != nil {
		return fmt.Errorf("check databases: %w", err)
	}
	if len(workers) == 0 {
		return fmt.Errorf("no test databases available")
	}

	if s.config.SeedCommand == "" {
		color.Green("✓ %d database(s) ready, no seed command configured\n", len(workers))
		return nil
	}

	color.White("Workers: %d | Seed command: %s\n\n", len(workers), s.config.SeedCommand)

	bar := progressbar.NewOptions(len(workers),
		progressbar.OptionSetDescription(
			color.CyanString("Seeding: ")+
				color.GreenString("[completed: 0/%d]", len(workers)),
		),
		progressbar.OptionSetWidth(50),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        color.CyanString("█"),
			SaucerHead:    color.CyanString("█"),
			SaucerPadding: "░",
			BarStart:      "│",
			BarEnd:        "│",
		}),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprint(os.Stderr, "\n")
		}),
		progressbar.OptionSetRenderBlankState(true),
	)

	var wg sync.WaitGroup
	var progressMu sync.Mutex
	completed := 0
	results := make(chan SeedResult, len(workers))
	startTime := time.Now()

	for _, workerID := range workers {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			result := s.seedWorker(id)
			progressMu.Lock()
			completed++
			current := completed
			progressMu.Unlock()
			bar.Set(current)
			bar.Describe(color.CyanString("Seeding: ") +
				color.GreenString("[completed: %d/%d]", current, len(workers)))
			results <- result
		}(workerID)
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	var failed []SeedResult
	for result := range results {
		if !result.Success {
			failed = append(failed, result)
		}
	}
	bar.Finish()

	duration := time.Since(startTime)

	fmt.Print("\n")
	if len(failed) == 0 {
		color.Green("✓ Seeding completed for all %d workers\n", len(workers))
		color.White("Duration: %s\n", duration.Round(time.Millisecond))
		return nil
	}

	color.Red("✗ Seeding failed for %d worker(s)\n", len(failed))
	for _, result := range failed {
		color.Red("  Worker %d (DB: %s): %v\n", result.WorkerID, s.config.GetDatabaseName(result.WorkerID), result.Error)
	}
	return fmt.Errorf("seeding failed for %d worker(s)", len(failed))
}

// seedWorker runs the seed command for one worker with streaming output
// capture.
func (s *Seeder) seedWorker(workerID int) SeedResult {
	fail := func(err error) SeedResult {
		return SeedResult{WorkerID: workerID, Success: false, Error: err}
	}

	projectAbsPath, err := filepath.Abs(s.config.ProjectPath)
	if err != nil {
		return fail(fmt.Errorf("resolve project path: %w", err))
	}

	cmd := exec.Command("sh", "-c", s.config.SeedCommand)
	cmd.Dir = projectAbsPath
	cmd.Env = append(os.Environ(), fmt.Sprintf("DB_DATABASE=%s", s.config.GetDatabaseName(workerID)))

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fail(fmt.Errorf("create stdout pipe: %w", err))
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return fail(fmt.Errorf("create stderr pipe: %w", err))
	}
	if err := cmd.Start(); err != nil {
		return fail(fmt.Errorf("start command: %w", err))
	}

	var mu sync.Mutex
	var output strings.Builder
	var scanWg sync.WaitGroup
	for _, pipe := range []io.Reader{stdout, stderr} {
		scanWg.Add(1)
		go func(r io.Reader) {
			defer scanWg.Done()
			scanner := bufio.NewScanner(r)
			for scanner.Scan() {
				mu.Lock()
				output.WriteString(scanner.Text())
				output.WriteString("\n")
				mu.Unlock()
			}
		}(pipe)
	}

	err = cmd.Wait()
	scanWg.Wait()

	return SeedResult{
		WorkerID: workerID,
		Success:  err == nil,
		Output:   output.String(),
		Error:    err,
	}
}
