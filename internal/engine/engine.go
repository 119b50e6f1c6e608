package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/betbot/algohost/internal/algorithm"
	"github.com/betbot/algohost/pkg/config"
	"github.com/betbot/algohost/pkg/debuggate"
	"github.com/betbot/algohost/pkg/shutdown"
)

var engineLog = logrus.WithField("component", "engine")

// Options 引擎参数
type Options struct {
	Algorithm string
	Script    string

	// Gate 调试器等待点；nil 等价于 Disabled
	Gate *debuggate.Gate
	// AttachPoint config.AttachPointData 或 config.AttachPointLoad
	AttachPoint string

	Ticks    int
	Interval time.Duration

	// Now 生成 tick 内容，默认 time.Now
	Now func() time.Time
}

// OptionsFromConfig 从配置构造引擎参数
func OptionsFromConfig(cfg *config.Config) (Options, error) {
	mode, err := cfg.DebugMode()
	if err != nil {
		return Options{}, err
	}
	return Options{
		Algorithm:   cfg.Algorithm.Name,
		Script:      cfg.Algorithm.Script,
		Gate:        debuggate.New(mode, debuggate.WithInterval(cfg.Debug.PollInterval)),
		AttachPoint: cfg.Debug.AttachPoint,
		Ticks:       cfg.Feed.Ticks,
		Interval:    cfg.Feed.Interval,
	}, nil
}

// Summary 一次运行的结果
type Summary struct {
	RunID     string
	Algorithm string
	Ticks     int
	Portfolio string
}

func (s *Summary) String() string {
	return s.Portfolio
}

// Engine 加载算法并驱动 Initialize / OnData 生命周期
type Engine struct {
	opts      Options
	portfolio *algorithm.Portfolio
	shutdown  *shutdown.Manager
}

// New 创建引擎
func New(opts Options) *Engine {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.AttachPoint == "" {
		opts.AttachPoint = config.AttachPointData
	}
	return &Engine{
		opts:      opts,
		portfolio: algorithm.NewPortfolio(),
		shutdown:  shutdown.NewManager(),
	}
}

// Portfolio 返回引擎持有的资金状态
func (e *Engine) Portfolio() *algorithm.Portfolio {
	return e.portfolio
}

// Run 执行一次完整的生命周期。ctx 取消只在 tick 之间生效，不会中断调试器等待。
func (e *Engine) Run(ctx context.Context) (*Summary, error) {
	summary := &Summary{RunID: uuid.NewString(), Algorithm: e.opts.Algorithm}
	log := engineLog.WithFields(logrus.Fields{"run_id": summary.RunID, "algorithm": e.opts.Algorithm})

	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := e.shutdown.Shutdown(shutdownCtx); err != nil {
			log.Warnf("释放算法资源失败: %v", err)
		}
	}()

	algo, err := algorithm.New(e.opts.Algorithm, algorithm.Options{Script: e.opts.Script})
	if err != nil {
		return nil, fmt.Errorf("加载算法失败: %w", err)
	}
	if c, ok := algo.(algorithm.Closer); ok {
		e.shutdown.OnShutdown(algo.ID(), func(context.Context) error { return c.Close() })
	}
	log.Infof("已加载算法: %s", algo.ID())

	switch e.opts.AttachPoint {
	case config.AttachPointLoad:
		e.opts.Gate.AwaitAttach()
	case config.AttachPointData:
		if setter, ok := algo.(algorithm.GateSetter); ok && e.opts.Gate != nil {
			setter.SetDebugGate(e.opts.Gate)
		}
	default:
		return nil, fmt.Errorf("未知的调试器附加点: %q", e.opts.AttachPoint)
	}

	if err := algo.Initialize(e.portfolio); err != nil {
		return nil, fmt.Errorf("初始化算法失败: %w", err)
	}
	log.Debugf("初始化完成: %s", e.portfolio)

	for i := 0; i < e.opts.Ticks; i++ {
		if i > 0 && e.opts.Interval > 0 {
			select {
			case <-ctx.Done():
			case <-time.After(e.opts.Interval):
			}
		}
		if err := ctx.Err(); err != nil {
			log.Warnf("运行被取消，已处理 %d/%d 个 tick", summary.Ticks, e.opts.Ticks)
			summary.Portfolio = e.portfolio.String()
			return summary, err
		}

		data := e.opts.Now().UTC().Format(time.RFC3339Nano)
		if err := algo.OnData(data, e.portfolio.View()); err != nil {
			return nil, fmt.Errorf("tick %d 处理失败: %w", i+1, err)
		}
		summary.Ticks++
	}

	summary.Portfolio = e.portfolio.String()
	log.Infof("运行结束: ticks=%d %s", summary.Ticks, summary.Portfolio)
	return summary, nil
}
