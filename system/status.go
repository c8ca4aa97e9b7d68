package system

// Status code classes.

func IsProvisional(sc int) bool    { return sc/100 == 1 }
func IsFinal(sc int) bool          { return sc >= 200 && sc < 700 }
func IsPositive(sc int) bool       { return sc/100 == 2 }
func IsNegative(sc int) bool       { return sc >= 300 && sc < 700 }
func IsNegativeClient(sc int) bool { return sc/100 == 4 }
func IsNegativeServer(sc int) bool { return sc/100 == 5 }
func IsNegativeGlobal(sc int) bool { return sc/100 == 6 }
