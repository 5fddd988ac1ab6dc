package services

import (
	"log"
	"sync"

	"geekdeals/internal/utils"
)

// CodeDispatcher generates codes and delivers them without blocking the caller.
type CodeDispatcher struct {
	email    EmailService
	operator OperatorNotifier // nil in production
	newCode  func() (string, error)
	wg       sync.WaitGroup
}

func NewCodeDispatcher(email EmailService, operator OperatorNotifier) *CodeDispatcher {
	return &CodeDispatcher{
		email:    email,
		operator: operator,
		newCode:  utils.NewNumericCode,
	}
}

func (d *CodeDispatcher) NewCode() (string, error) {
	return d.newCode()
}

// Dispatch sends the code in the background. Failures are only logged.
func (d *CodeDispatcher) Dispatch(email, name, code string) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()

		d.deliver("email to "+email, func() error {
			return d.email.SendLoginCode(email, name, code)
		})
		if d.operator != nil {
			d.deliver("operator channel", func() error {
				return d.operator.NotifyCode(email, code)
			})
		}
	}()
}

// deliver runs one delivery step; a panic in it does not skip the next one.
func (d *CodeDispatcher) deliver(what string, send func() error) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[2fa][dispatch] panic in %s: %v", what, r)
		}
	}()
	if err := send(); err != nil {
		log.Printf("[2fa][dispatch] %s failed: %v", what, err)
	}
}

// Wait blocks until every in-flight delivery has finished.
func (d *CodeDispatcher) Wait() {
	d.wg.Wait()
}
