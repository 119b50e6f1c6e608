package algorithm

import (
	"fmt"
	"sync"

	"github.com/shopspring/decimal"
)

// Portfolio 宿主持有的资金状态
type Portfolio struct {
	mu   sync.RWMutex
	cash decimal.Decimal
}

// NewPortfolio 创建现金为 0 的 Portfolio
func NewPortfolio() *Portfolio {
	return &Portfolio{cash: decimal.Zero}
}

// SetCash 实现 Setup
func (p *Portfolio) SetCash(cash decimal.Decimal) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cash = cash
}

// Cash 返回当前现金余额
func (p *Portfolio) Cash() decimal.Decimal {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.cash
}

// View 返回只读快照，算法拿到的对象无法修改 Portfolio
func (p *Portfolio) View() PortfolioView {
	return snapshot{cash: p.Cash()}
}

func (p *Portfolio) String() string {
	return fmt.Sprintf("Algorithm.Portfolio.Cash: %s", p.Cash().String())
}

type snapshot struct {
	cash decimal.Decimal
}

func (s snapshot) Cash() decimal.Decimal { return s.cash }
