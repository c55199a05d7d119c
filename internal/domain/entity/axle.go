package entity

// AxleCounter раздаёт сохранённым кадрам номера колеса и оси.
//
// Каждые два подряд сохранённых кадра считаются двумя колёсами одной оси.
// Это никак не проверяется: пропущенное или повторённое колесо
// сдвигает номера всех следующих осей.
type AxleCounter struct {
	wheel       int
	axle        int
	wheelInAxle int
}

// NewAxleCounter создаёт счётчик перед первым колесом оси 1.
func NewAxleCounter() *AxleCounter {
	return &AxleCounter{axle: 1}
}

// Next возвращает номера для сохраняемого кадра и сдвигает счётчик.
func (c *AxleCounter) Next() (wheel, axle int) {
	wheel, axle = c.wheel, c.axle

	c.wheel++
	c.wheelInAxle++
	if c.wheelInAxle == 2 {
		c.axle++
		c.wheelInAxle = 0
	}

	return wheel, axle
}
