package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"estimator/internal/config"
	"estimator/internal/estimate"
	"estimator/internal/remote"
)

// App adapts the workflow controller to the bubbletea Model interface
// for the standalone program. The embedding host drives the controller
// directly; App exists so `estimator` works as a terminal app too.
type App struct {
	ctrl           *Controller
	initialProduct estimate.ProductID
	forceListView  bool
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates the standalone program model. A non-empty productID
// starts a product-addition flow on launch.
func NewApp(svc remote.Service, cfg config.Config, productID estimate.ProductID, forceListView bool) *App {
	return &App{
		ctrl:           NewController(svc, cfg),
		initialProduct: productID,
		forceListView:  forceListView,
	}
}

// Controller exposes the underlying workflow controller.
func (a *App) Controller() *Controller {
	return a.ctrl
}

// Init opens the workflow immediately.
func (a *App) Init() tea.Cmd {
	open := OpenMsg{ProductID: a.initialProduct, ForceListView: a.forceListView}
	return func() tea.Msg { return open }
}

// Update implements tea.Model. Closing the workflow quits the program:
// the widget is the program's entire surface.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok && key.String() == "ctrl+c" {
		return a, tea.Quit
	}
	wasOpen := a.ctrl.State != StateClosed
	cmd := a.ctrl.Update(msg)
	if wasOpen && a.ctrl.State == StateClosed {
		return a, tea.Batch(cmd, tea.Quit)
	}
	return a, cmd
}

// View implements tea.Model.
func (a *App) View() string {
	return a.ctrl.View()
}
