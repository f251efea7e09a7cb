package main

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	excelstream "github.com/excelstream/excelstream-go"
)

type BenchmarkResult struct {
	Rows          int
	Duration      float64
	RowsPerSecond float64
	MemoryMB      float64
	MemoryDelta   float64
	FileSize      int64
	FileSizeMB    float64
}

func main() {
	fmt.Println("excelstream - Comprehensive Benchmark Suite")
	fmt.Println()

	testSizes := []int{
		1000, 10000, 50000, 100000, 250000, 500000, 1000000, 2000000,
	}

	fmt.Println("Running Local File System Tests...")
	fmt.Println()
	localResults := make(map[int]*BenchmarkResult)

	for _, size := range testSizes {
		fmt.Printf("Testing %d rows (local)... ", size)
		result := benchmarkLocal(size)
		localResults[size] = result

		fmt.Printf("%.2fs | %.0f rows/s | %.2f MB memory\n",
			result.Duration, result.RowsPerSecond, result.MemoryMB)

		os.Remove(fmt.Sprintf("benchmark_%d.xlsx", size))
	}

	s3Results := make(map[int]*BenchmarkResult)
	if os.Getenv("S3_BENCH_BUCKET") != "" {
		fmt.Println()
		fmt.Println("Running S3 Streaming Tests...")
		fmt.Println()
		for _, size := range testSizes {
			fmt.Printf("Testing %d rows (S3)... ", size)
			result := benchmarkS3(size)
			s3Results[size] = result
			if result != nil {
				fmt.Printf("%.2fs | %.0f rows/s | %.2f MB (max-min %.2f) memory\n",
					result.Duration, result.RowsPerSecond, result.MemoryMB, result.MemoryDelta)
			} else {
				fmt.Println("Failed")
			}
			time.Sleep(2 * time.Second) // Cooldown between tests
		}
	} else {
		fmt.Println("\nSet S3_BENCH_BUCKET to include S3 streaming tests.")
	}

	generateMarkdownTable(testSizes, localResults, s3Results)
}

func benchmarkLocal(rows int) *BenchmarkResult {
	filename := fmt.Sprintf("benchmark_%d.xlsx", rows)

	runtime.GC()
	var m1 runtime.MemStats
	runtime.ReadMemStats(&m1)

	startTime := time.Now()

	sink, _ := excelstream.NewFileSink(filename)
	cfg := excelstream.DefaultConfig()
	cfg.CompressionLevel = 1
	wb, _ := excelstream.NewWorkbook(sink, cfg)

	wb.AddSheet("Data")
	wb.WriteRow([]string{"ID", "Name", "Email", "Score", "Status"})
	for i := 1; i <= rows; i++ {
		wb.WriteRowTyped([]excelstream.Cell{
			excelstream.Int(int64(i)),
			excelstream.String(fmt.Sprintf("User %d", i)),
			excelstream.String(fmt.Sprintf("user%d@example.com", i)),
			excelstream.Float(float64(i % 100)),
			excelstream.String("active"),
		})
	}

	stats, _ := wb.Close()
	duration := time.Since(startTime).Seconds()

	runtime.GC()
	var m2 runtime.MemStats
	runtime.ReadMemStats(&m2)

	fileInfo, _ := os.Stat(filename)

	return &BenchmarkResult{
		Rows:          rows,
		Duration:      duration,
		RowsPerSecond: stats.RowsPerSecond,
		MemoryMB:      float64(m2.Alloc) / 1024 / 1024,
		MemoryDelta:   float64(int64(m2.Alloc)-int64(m1.Alloc)) / 1024 / 1024,
		FileSize:      fileInfo.Size(),
		FileSizeMB:    float64(fileInfo.Size()) / 1024 / 1024,
	}
}

func benchmarkS3(rows int) *BenchmarkResult {
	ctx := context.Background()

	bucket := os.Getenv("S3_BENCH_BUCKET")
	region := os.Getenv("S3_BENCH_REGION")
	if region == "" {
		region = "us-east-1"
	}

	opts := []func(*config.LoadOptions) error{config.WithRegion(region)}
	if ak := os.Getenv("S3_BENCH_ACCESS_KEY"); ak != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(ak, os.Getenv("S3_BENCH_SECRET_KEY"), "")))
	}
	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil
	}

	client := s3.NewFromConfig(cfg)
	key := fmt.Sprintf("benchmarks/go_benchmark_%d_%d.xlsx", rows, time.Now().Unix())

	runtime.GC()
	var m1 runtime.MemStats
	runtime.ReadMemStats(&m1)
	minMem, maxMem := m1.Alloc, m1.Alloc

	startTime := time.Now()

	sink, err := excelstream.NewS3Sink(ctx, client, bucket, key)
	if err != nil {
		return nil
	}

	wcfg := excelstream.DefaultConfig()
	wcfg.CompressionLevel = 1
	wb, err := excelstream.NewWorkbook(sink, wcfg)
	if err != nil {
		return nil
	}

	wb.AddSheet("Data")
	wb.WriteRow([]string{"ID", "Name", "Email", "Score", "Status"})

	checkInterval := 1000
	for i := 1; i <= rows; i++ {
		wb.WriteRowTyped([]excelstream.Cell{
			excelstream.Int(int64(i)),
			excelstream.String(fmt.Sprintf("User %d", i)),
			excelstream.String(fmt.Sprintf("user%d@example.com", i)),
			excelstream.Float(float64(i % 100)),
			excelstream.String("active"),
		})

		if i%checkInterval == 0 {
			var m runtime.MemStats
			runtime.ReadMemStats(&m)
			if m.Alloc < minMem {
				minMem = m.Alloc
			}
			if m.Alloc > maxMem {
				maxMem = m.Alloc
			}
		}
	}

	stats, err := wb.Close()
	if err != nil {
		sink.Abort()
		return nil
	}
	duration := time.Since(startTime).Seconds()

	runtime.GC()
	var m2 runtime.MemStats
	runtime.ReadMemStats(&m2)

	return &BenchmarkResult{
		Rows:          rows,
		Duration:      duration,
		RowsPerSecond: stats.RowsPerSecond,
		MemoryMB:      float64(m2.Alloc) / 1024 / 1024,
		MemoryDelta:   float64(maxMem-minMem) / 1024 / 1024,
		FileSize:      sink.TotalBytes(),
		FileSizeMB:    float64(sink.TotalBytes()) / 1024 / 1024,
	}
}

func generateMarkdownTable(sizes []int, local, s3res map[int]*BenchmarkResult) {
	file, _ := os.Create("BENCHMARK_RESULTS.md")
	defer file.Close()

	file.WriteString("# Comprehensive Benchmark Results\n\n")
	file.WriteString("## Test Environment\n")
	file.WriteString(fmt.Sprintf("- **CPU**: %s\n", runtime.GOARCH))
	file.WriteString(fmt.Sprintf("- **Go Version**: %s\n", runtime.Version()))
	file.WriteString("- **OS**: " + runtime.GOOS + "\n")
	file.WriteString("- **Compression**: Level 1 (fastest)\n\n")

	file.WriteString("## Results\n\n")
	file.WriteString("| Rows | Local Speed | Local Memory | Local Time | S3 Speed | S3 Memory | File Size |\n")
	file.WriteString("|------|-------------|--------------|------------|----------|-----------|----------|\n")

	for _, size := range sizes {
		localRes := local[size]
		s3Res := s3res[size]

		localSpeed, localMem, localTime := "-", "-", "-"
		s3Speed, s3Mem, fileSize := "-", "-", "-"

		if localRes != nil {
			localSpeed = fmt.Sprintf("%.0f rows/s", localRes.RowsPerSecond)
			localMem = fmt.Sprintf("%.0f MB", localRes.MemoryMB)
			localTime = fmt.Sprintf("%.2fs", localRes.Duration)
			fileSize = fmt.Sprintf("%.2f MB", localRes.FileSizeMB)
		}
		if s3Res != nil {
			s3Speed = fmt.Sprintf("%.0f rows/s", s3Res.RowsPerSecond)
			s3Mem = fmt.Sprintf("%.0f MB", s3Res.MemoryMB)
		}

		file.WriteString(fmt.Sprintf("| %s | %s | %s | %s | %s | %s | %s |\n",
			formatNumber(size), localSpeed, localMem, localTime, s3Speed, s3Mem, fileSize))
	}

	fmt.Println("\nMarkdown table saved to BENCHMARK_RESULTS.md")
}

func formatNumber(n int) string {
	if n >= 1000000 {
		return fmt.Sprintf("%.1fM", float64(n)/1000000)
	} else if n >= 1000 {
		return fmt.Sprintf("%dK", n/1000)
	}
	return fmt.Sprintf("%d", n)
}
