package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sjsage522/pricecontext/internal/currency"
	"sjsage522/pricecontext/internal/dom"
	"sjsage522/pricecontext/internal/site"
	"sjsage522/pricecontext/pkg/errors"
	"sjsage522/pricecontext/services/settings"
)

type staticRates struct {
	table currency.RateTable
	err   error
}

func (s staticRates) Load(ctx context.Context) (currency.RateTable, error) {
	if s.err != nil {
		return currency.NewRateTable(nil), s.err
	}
	return s.table, nil
}

func scenarioRates() staticRates {
	return staticRates{table: currency.NewRateTable(map[string]float64{"TWD": 1, "USD": 30, "JPY": 0.22})}
}

const page = `<html><body><span id="p">$10</span><p id="q">¥1,000</p></body></html>`

func newController(t *testing.T, pageURL string, store settings.Store, rates RateLoader) *Controller {
	t.Helper()
	doc, err := dom.ParseString(page)
	require.NoError(t, err)
	sites, err := site.DefaultTable()
	require.NoError(t, err)
	return NewController(doc, pageURL, store, rates, sites)
}

func configuredStore(t *testing.T) *settings.MemoryStore {
	t.Helper()
	ctx := context.Background()
	store := settings.NewMemoryStore()
	require.NoError(t, store.SetSalary(ctx, settings.Salary{Amount: 60000, SalaryType: settings.SalaryMonthly, Currency: "TWD"}))
	require.NoError(t, store.SetWorkHoursPerDay(ctx, 8))
	return store
}

func annotationOf(t *testing.T, c *Controller, selector string) string {
	t.Helper()
	el := c.Document().Find(selector).Get(0)
	require.NotNil(t, el)
	span := dom.ChildWithClass(el, site.AnnotationClass)
	if span == nil {
		return ""
	}
	return dom.TextContent(span)
}

func TestStartAnnotatesAndObserves(t *testing.T) {
	c := newController(t, "https://shop.example.com/item/1", configuredStore(t), scenarioRates())

	require.NoError(t, c.Start(context.Background()))
	assert.Equal(t, 2, c.Annotations())
	assert.Equal(t, " (52 mins)", annotationOf(t, c, "#p"))
	assert.True(t, c.Observing())
	assert.True(t, c.State().Enabled(), "enabled defaults to true when absent")
	assert.Equal(t, "shop.example.com", c.State().Hostname())
	assert.InDelta(t, 346.15, c.State().Config().HourlyRate, 0.01)
	assert.NotEqual(t, "", c.State().PageID().String())
}

func TestStartScenarioDRatesUnavailable(t *testing.T) {
	rates := staticRates{err: errors.NewDataUnavailable("rates", "no snapshot", nil)}
	c := newController(t, "https://shop.example.com/", configuredStore(t), rates)

	require.NoError(t, c.Start(context.Background()))
	assert.Equal(t, 0, c.Annotations())
	assert.True(t, c.Observing())

	// Later mutations are still handled without errors
	doc := c.Document()
	span := dom.NewElement("span")
	span.AppendChild(dom.NewText("$30"))
	doc.AppendChild(doc.Body(), span)
	assert.NotPanics(t, func() { doc.Flush() })
	assert.Equal(t, 0, c.Annotations())
}

func TestStartScenarioCGatedHost(t *testing.T) {
	ctx := context.Background()
	store := settings.NewMemoryStore()
	require.NoError(t, store.SetBaseItem(ctx, settings.BaseItem{Name: "coffees", SingularName: "coffee", Price: 100}))

	c := newController(t, "https://www.amazon.com/dp/B000", store, scenarioRates())
	require.NoError(t, c.Start(ctx))
	assert.Equal(t, 0, c.Annotations())

	// Configuring a salary lifts the gate on the next change notification
	require.NoError(t, store.SetSalary(ctx, settings.Salary{Amount: 60000, SalaryType: settings.SalaryMonthly, Currency: "TWD"}))
	c.HandleChange(ctx, settings.Change{Namespace: settings.NamespaceSync, Keys: []string{settings.KeySalary}})
	assert.Equal(t, 0, c.Annotations(), "the generic markup on this page is not scanned by the narrow profile")
}

func TestStartRespectsStoredDisable(t *testing.T) {
	ctx := context.Background()
	store := configuredStore(t)
	require.NoError(t, store.SetEnabled(ctx, false))

	c := newController(t, "https://shop.example.com/", store, scenarioRates())
	require.NoError(t, c.Start(ctx))
	assert.False(t, c.State().Enabled())
	assert.Equal(t, 0, c.Annotations())
}

func TestHandleEnabledChange(t *testing.T) {
	ctx := context.Background()
	store := configuredStore(t)
	c := newController(t, "https://shop.example.com/", store, scenarioRates())
	require.NoError(t, c.Start(ctx))
	require.Equal(t, 2, c.Annotations())

	require.NoError(t, store.SetEnabled(ctx, false))
	c.HandleChange(ctx, settings.Change{Namespace: settings.NamespaceLocal, Keys: []string{settings.KeyEnabled}})
	assert.Equal(t, 0, c.Annotations())
	assert.Equal(t, 0, c.Document().Find("."+site.ProcessedClass).Length())
	assert.True(t, c.Observing())

	require.NoError(t, store.SetEnabled(ctx, true))
	c.HandleChange(ctx, settings.Change{Namespace: settings.NamespaceLocal, Keys: []string{settings.KeyEnabled}})
	assert.Equal(t, 2, c.Annotations())
}

func TestHandleConfigChange(t *testing.T) {
	ctx := context.Background()
	store := configuredStore(t)
	c := newController(t, "https://shop.example.com/", store, scenarioRates())
	require.NoError(t, c.Start(ctx))
	require.Equal(t, " (52 mins)", annotationOf(t, c, "#p"))

	require.NoError(t, store.SetWorkHoursPerDay(ctx, 4))
	c.HandleChange(ctx, settings.Change{Namespace: settings.NamespaceSync, Keys: []string{settings.KeyWorkHoursPerDay}})

	// Same annual salary over half the hours doubles the hourly rate
	assert.Equal(t, " (26 mins)", annotationOf(t, c, "#p"))
	assert.Equal(t, 2, c.Annotations())

	require.NoError(t, store.SetBaseItem(ctx, settings.BaseItem{Name: "coffees", SingularName: "coffee", Price: 150}))
	c.HandleChange(ctx, settings.Change{Namespace: settings.NamespaceSync, Keys: []string{settings.KeyBaseItem}})
	assert.Equal(t, " (26 mins or 2.0 coffees)", annotationOf(t, c, "#p"))
}

func TestHandleUnrelatedChange(t *testing.T) {
	ctx := context.Background()
	store := configuredStore(t)
	c := newController(t, "https://shop.example.com/", store, scenarioRates())
	require.NoError(t, c.Start(ctx))

	before := c.Document().HTML()
	c.HandleChange(ctx, settings.Change{Namespace: settings.NamespaceLocal, Keys: []string{settings.KeyLanguage}})
	assert.Equal(t, before, c.Document().HTML())
}

func TestBadPageURLUsesGenericProfile(t *testing.T) {
	c := newController(t, "::not a url", configuredStore(t), scenarioRates())
	require.NoError(t, c.Start(context.Background()))
	assert.Equal(t, "", c.State().Hostname())
	assert.Equal(t, 2, c.Annotations())
}

func TestRefreshDoesNotDuplicate(t *testing.T) {
	c := newController(t, "https://shop.example.com/", configuredStore(t), scenarioRates())
	require.NoError(t, c.Start(context.Background()))

	for i := 0; i < 3; i++ {
		c.Refresh()
		c.Document().Flush()
	}
	assert.Equal(t, 2, c.Annotations())
}

func TestStartCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := newController(t, "https://shop.example.com/", configuredStore(t), scenarioRates())
	err := c.Start(ctx)
	assert.Error(t, err)
	assert.Equal(t, 0, c.Annotations())
}
